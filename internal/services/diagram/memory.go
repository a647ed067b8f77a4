package diagram

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in process memory. Transactions are
// serialized by a single mutex.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*User
	umls  map[string]*UML
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*User),
		umls:  make(map[string]*UML),
	}
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, staged: newOverlay()}
	if err := fn(tx); err != nil {
		return err
	}

	for uid, u := range tx.staged.users {
		if u == nil {
			delete(s.users, uid)
		} else {
			s.users[uid] = u
		}
	}
	for id, d := range tx.staged.umls {
		if d == nil {
			delete(s.umls, id)
		} else {
			s.umls[id] = d
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

type memoryTx struct {
	store  *MemoryStore
	staged *overlay
}

func (t *memoryTx) GetUser(uid string) (*User, error) {
	if u, staged, err := t.staged.user(uid); staged {
		return u, err
	}
	u, ok := t.store.users[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return u.clone(), nil
}

func (t *memoryTx) SetUser(uid string, user *User) error {
	t.staged.users[uid] = user.clone()
	return nil
}

func (t *memoryTx) DeleteUser(uid string) error {
	t.staged.users[uid] = nil
	return nil
}

func (t *memoryTx) GetUML(id string) (*UML, error) {
	if d, staged, err := t.staged.uml(id); staged {
		return d, err
	}
	d, ok := t.store.umls[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.clone(), nil
}

func (t *memoryTx) SetUML(id string, doc *UML) error {
	t.staged.umls[id] = doc.clone()
	return nil
}

func (t *memoryTx) DeleteUML(id string) error {
	t.staged.umls[id] = nil
	return nil
}

func (t *memoryTx) ListUML() ([]Entry, error) {
	committed := make([]Entry, 0, len(t.store.umls))
	for id, d := range t.store.umls {
		committed = append(committed, Entry{ID: id, UML: *d})
	}
	return t.staged.mergeUML(committed), nil
}
