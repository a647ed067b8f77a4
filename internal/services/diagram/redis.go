package diagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	redisinfra "github.com/umlforge/umlforge/internal/infrastructure/redis"
	"github.com/umlforge/umlforge/pkg/logger"
)

const (
	userKeyPrefix = "user:"
	umlKeyPrefix  = "uml:"
	umlIndexKey   = "uml:ids"

	maxTxAttempts = 10
)

// RedisStore keeps documents as JSON strings. Every key a transaction reads
// is WATCHed and writes are applied in one MULTI/EXEC, so a concurrent
// change to anything read aborts and retries the transaction.
type RedisStore struct {
	redis *redisinfra.Service
}

func NewRedisStore(svc *redisinfra.Service) *RedisStore {
	return &RedisStore{redis: svc}
}

func (s *RedisStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.redis.Watch(ctx, func(rtx *redis.Tx) error {
			tx := &redisTx{ctx: ctx, rtx: rtx, staged: newOverlay()}
			if err := fn(tx); err != nil {
				return err
			}
			_, err := rtx.TxPipelined(ctx, tx.apply)
			return err
		})
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		logger.Debug(logger.STORE, "Redis transaction conflict, attempt %d of %d", attempt, maxTxAttempts)
	}
	return fmt.Errorf("redis transaction aborted after %d attempts: %w", maxTxAttempts, err)
}

func (s *RedisStore) Close() error {
	return s.redis.Close()
}

type redisTx struct {
	ctx    context.Context
	rtx    *redis.Tx
	staged *overlay
}

func (t *redisTx) read(key string, v interface{}) error {
	if err := t.rtx.Watch(t.ctx, key).Err(); err != nil {
		return err
	}
	raw, err := t.rtx.Get(t.ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (t *redisTx) GetUser(uid string) (*User, error) {
	if u, staged, err := t.staged.user(uid); staged {
		return u, err
	}
	var u User
	if err := t.read(userKeyPrefix+uid, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (t *redisTx) SetUser(uid string, user *User) error {
	t.staged.users[uid] = user.clone()
	return nil
}

func (t *redisTx) DeleteUser(uid string) error {
	t.staged.users[uid] = nil
	return nil
}

func (t *redisTx) GetUML(id string) (*UML, error) {
	if d, staged, err := t.staged.uml(id); staged {
		return d, err
	}
	var d UML
	if err := t.read(umlKeyPrefix+id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (t *redisTx) SetUML(id string, doc *UML) error {
	t.staged.umls[id] = doc.clone()
	return nil
}

func (t *redisTx) DeleteUML(id string) error {
	t.staged.umls[id] = nil
	return nil
}

func (t *redisTx) ListUML() ([]Entry, error) {
	if err := t.rtx.Watch(t.ctx, umlIndexKey).Err(); err != nil {
		return nil, err
	}
	ids, err := t.rtx.SMembers(t.ctx, umlIndexKey).Result()
	if err != nil {
		return nil, err
	}

	committed := make([]Entry, 0, len(ids))
	for _, id := range ids {
		var d UML
		err := t.read(umlKeyPrefix+id, &d)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		committed = append(committed, Entry{ID: id, UML: d})
	}
	return t.staged.mergeUML(committed), nil
}

// apply queues the staged writes inside MULTI/EXEC.
func (t *redisTx) apply(pipe redis.Pipeliner) error {
	for uid, u := range t.staged.users {
		key := userKeyPrefix + uid
		if u == nil {
			pipe.Del(t.ctx, key)
			continue
		}
		raw, err := json.Marshal(u)
		if err != nil {
			return err
		}
		pipe.Set(t.ctx, key, raw, 0)
	}
	for id, d := range t.staged.umls {
		key := umlKeyPrefix + id
		if d == nil {
			pipe.Del(t.ctx, key)
			pipe.SRem(t.ctx, umlIndexKey, id)
			continue
		}
		raw, err := json.Marshal(d)
		if err != nil {
			return err
		}
		pipe.Set(t.ctx, key, raw, 0)
		pipe.SAdd(t.ctx, umlIndexKey, id)
	}
	return nil
}
