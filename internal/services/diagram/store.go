// Package diagram stores users and their UML diagrams in a transactional
// document store and implements the diagram library operations on top.
package diagram

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned for a missing user or UML document.
	ErrNotFound = errors.New("document not found")
	// ErrUserExists is returned when creating a user that already has a document.
	ErrUserExists = errors.New("user already exists")
)

// Store runs transactions over the "User" and "UML" collections.
//
// RunTransaction calls fn with a Tx bound to ctx. Writes made through the Tx
// become visible atomically when fn returns nil and are discarded otherwise.
// Reads inside fn see the transaction's own writes.
type Store interface {
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

type Tx interface {
	GetUser(uid string) (*User, error)
	SetUser(uid string, user *User) error
	DeleteUser(uid string) error

	GetUML(id string) (*UML, error)
	SetUML(id string, doc *UML) error
	DeleteUML(id string) error
	// ListUML returns every UML document, in no particular order.
	ListUML() ([]Entry, error)
}

// overlay buffers a transaction's writes. A nil value marks a delete.
type overlay struct {
	users map[string]*User
	umls  map[string]*UML
}

func newOverlay() *overlay {
	return &overlay{
		users: make(map[string]*User),
		umls:  make(map[string]*UML),
	}
}

func (o *overlay) user(uid string) (*User, bool, error) {
	u, staged := o.users[uid]
	if !staged {
		return nil, false, nil
	}
	if u == nil {
		return nil, true, ErrNotFound
	}
	return u.clone(), true, nil
}

func (o *overlay) uml(id string) (*UML, bool, error) {
	d, staged := o.umls[id]
	if !staged {
		return nil, false, nil
	}
	if d == nil {
		return nil, true, ErrNotFound
	}
	return d.clone(), true, nil
}

// mergeUML applies staged UML writes to a committed listing.
func (o *overlay) mergeUML(committed []Entry) []Entry {
	out := make([]Entry, 0, len(committed)+len(o.umls))
	for _, e := range committed {
		if _, staged := o.umls[e.ID]; staged {
			continue
		}
		out = append(out, e)
	}
	for id, d := range o.umls {
		if d != nil {
			out = append(out, Entry{ID: id, UML: *d})
		}
	}
	return out
}
