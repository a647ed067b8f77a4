package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/umlforge/umlforge/pkg/logger"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"

	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// RequestID returns the id assigned by RequestLogger, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestLogger tags each request with an id, echoing a client-supplied
// X-Request-ID when present, and logs method, path, status and latency.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		elapsed := time.Since(start)

		switch {
		case rec.status >= 500:
			logger.Error(logger.MIDDLEWARE, "%s %s %d %s id=%s", r.Method, r.URL.Path, rec.status, elapsed, id)
		case rec.status >= 400:
			logger.Warn(logger.MIDDLEWARE, "%s %s %d %s id=%s", r.Method, r.URL.Path, rec.status, elapsed, id)
		default:
			logger.Info(logger.MIDDLEWARE, "%s %s %d %s %dB id=%s", r.Method, r.URL.Path, rec.status, elapsed, rec.bytes, id)
		}
	})
}
