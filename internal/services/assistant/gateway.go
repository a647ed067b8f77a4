// Package assistant drives a thread/run style assistant API: it creates a
// thread, starts a run, polls it to a terminal status and returns the reply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/umlforge/umlforge/pkg/logger"
)

const defaultPollInterval = 500 * time.Millisecond

var errNoAssistantMessage = errors.New("thread has no assistant message")

// Client is the subset of the assistants API the gateway needs.
// *openai.Client satisfies it.
type Client interface {
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

// Timer is the cancellable timer the timeout race runs against.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) C() <-chan time.Time { return r.t.C }
func (r realTimer) Stop() bool          { return r.t.Stop() }

func newRealTimer(d time.Duration) Timer {
	return realTimer{t: time.NewTimer(d)}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPollInterval sets the wait between run status polls. Non-positive
// values keep the default.
func WithPollInterval(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.pollInterval = d
		}
	}
}

// WithSleep replaces the primitive used to wait between polls.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Gateway) { g.sleep = sleep }
}

// WithTimer replaces the timer factory used for the timeout race.
func WithTimer(newTimer func(d time.Duration) Timer) Option {
	return func(g *Gateway) { g.newTimer = newTimer }
}

// Gateway holds no per-call state and is safe for concurrent use.
type Gateway struct {
	client       Client
	pollInterval time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
	newTimer     func(d time.Duration) Timer
}

func NewGateway(client Client, opts ...Option) *Gateway {
	g := &Gateway{
		client:       client,
		pollInterval: defaultPollInterval,
		sleep:        sleepContext,
		newTimer:     newRealTimer,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ask runs the whole exchange with no timeout of its own. Errors are raw:
// *RunStatusError for a non-completed run, transport errors otherwise.
func (g *Gateway) Ask(ctx context.Context, assistantID, prompt string) (string, error) {
	thread, err := g.client.CreateThread(ctx, openai.ThreadRequest{
		Messages: []openai.ThreadMessage{{
			Role:    openai.ThreadMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}

	run, err := g.client.CreateRun(ctx, thread.ID, openai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return "", fmt.Errorf("creating run: %w", err)
	}

	logger.Debug(logger.ASSISTANT, "Started run %s on thread %s for assistant %s", run.ID, thread.ID, assistantID)

	status, err := g.awaitRun(ctx, thread.ID, run.ID)
	if err != nil {
		return "", err
	}
	if status != openai.RunStatusCompleted {
		return "", &RunStatusError{Status: status}
	}

	return g.lastReply(ctx, thread.ID)
}

func (g *Gateway) awaitRun(ctx context.Context, threadID, runID string) (openai.RunStatus, error) {
	for polls := 1; ; polls++ {
		run, err := g.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return "", fmt.Errorf("retrieving run: %w", err)
		}

		switch run.Status {
		case openai.RunStatusQueued, openai.RunStatusInProgress:
		default:
			logger.Debug(logger.ASSISTANT, "Run %s reached %s after %d polls", runID, run.Status, polls)
			return run.Status, nil
		}

		if err := g.sleep(ctx, g.pollInterval); err != nil {
			return "", err
		}
	}
}

// lastReply lists newest first so the first assistant message is the most recent one.
func (g *Gateway) lastReply(ctx context.Context, threadID string) (string, error) {
	order := "desc"
	list, err := g.client.ListMessage(ctx, threadID, nil, &order, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("listing messages: %w", err)
	}

	for _, msg := range list.Messages {
		if msg.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		for _, part := range msg.Content {
			if part.Text != nil {
				return part.Text.Value, nil
			}
		}
		return "", fmt.Errorf("assistant message %s has no text content", msg.ID)
	}
	return "", errNoAssistantMessage
}

// Call races Ask against timeout. Whichever finishes first decides the
// result. On every exit the timer is stopped and the context handed to Ask
// is cancelled, so the abandoned call stops waiting on the remote run.
// All failures are returned as *Error.
func (g *Gateway) Call(ctx context.Context, assistantID, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timer := g.newTimer(timeout)
	defer timer.Stop()

	type result struct {
		reply string
		err   error
	}
	done := make(chan result, 1)

	go func() {
		reply, err := g.Ask(ctx, assistantID, prompt)
		done <- result{reply: reply, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			gwErr := normalize(res.err)
			log.Warn().
				Err(res.err).
				Str("assistant_id", assistantID).
				Str("kind", gwErr.Kind).
				Int("status", gwErr.Status).
				Msg("Assistant call failed")
			return "", gwErr
		}
		return res.reply, nil
	case <-timer.C():
		log.Warn().
			Str("assistant_id", assistantID).
			Dur("timeout", timeout).
			Msg("Assistant call timed out")
		return "", timeoutError(timeout)
	}
}
