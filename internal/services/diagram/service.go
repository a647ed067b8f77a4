package diagram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Filter selects public diagrams. A diagram passes when its name contains
// NameContains (case-insensitive, empty matches all) and at least one
// enabled category matches its content.
type Filter struct {
	Class        bool
	State        bool
	UseCase      bool
	Activity     bool
	Sequence     bool
	NameContains string
}

func (f Filter) match(d *UML) bool {
	if !strings.EqualFold(d.Privacy, "public") || d.Diagram == "" {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(f.NameContains)) {
		return false
	}

	c := d.Content
	return (f.Class && strings.Contains(c, "class")) ||
		(f.State && (strings.Contains(c, "[*]") || strings.Contains(c, "(*)"))) ||
		(f.UseCase && strings.Contains(c, "usecase")) ||
		(f.Activity && (strings.Contains(c, "start\n") || strings.Contains(c, ":Start;"))) ||
		(f.Sequence && strings.Contains(c, "participant"))
}

// Service implements the diagram library on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *Service) timestamp() int64 {
	return s.now().UnixMilli()
}

// CreateUser creates an empty library for uid.
func (s *Service) CreateUser(ctx context.Context, uid string) error {
	return s.store.RunTransaction(ctx, func(tx Tx) error {
		_, err := tx.GetUser(uid)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		return tx.SetUser(uid, &User{SavedUML: []string{}})
	})
}

func (s *Service) UserExists(ctx context.Context, uid string) (bool, error) {
	exists := false
	err := s.store.RunTransaction(ctx, func(tx Tx) error {
		_, err := tx.GetUser(uid)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// UserDiagrams returns the user's diagrams, newest first. Ids in savedUML
// whose document is gone are skipped.
func (s *Service) UserDiagrams(ctx context.Context, uid string) ([]Entry, error) {
	var entries []Entry
	err := s.store.RunTransaction(ctx, func(tx Tx) error {
		user, err := tx.GetUser(uid)
		if err != nil {
			return fmt.Errorf("loading user %s: %w", uid, err)
		}

		entries = make([]Entry, 0, len(user.SavedUML))
		for _, id := range user.SavedUML {
			doc, err := tx.GetUML(id)
			if errors.Is(err, ErrNotFound) {
				log.Warn().Str("uid", uid).Str("uml_id", id).Msg("Saved UML reference has no document")
				continue
			}
			if err != nil {
				return fmt.Errorf("loading uml %s: %w", id, err)
			}
			entries = append(entries, Entry{ID: id, UML: *doc})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(entries)
	return entries, nil
}

func (s *Service) Diagram(ctx context.Context, id string) (*UML, error) {
	var doc *UML
	err := s.store.RunTransaction(ctx, func(tx Tx) error {
		var err error
		doc, err = tx.GetUML(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// PublicDiagrams returns public, rendered diagrams matching f, newest first.
func (s *Service) PublicDiagrams(ctx context.Context, f Filter) ([]Entry, error) {
	matched := []Entry{}
	err := s.store.RunTransaction(ctx, func(tx Tx) error {
		all, err := tx.ListUML()
		if err != nil {
			return err
		}
		for i := range all {
			if f.match(&all[i].UML) {
				matched = append(matched, all[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(matched)
	return matched, nil
}

// CreateDiagram stores doc with a fresh timestamp and appends its id to the
// owner's savedUML.
func (s *Service) CreateDiagram(ctx context.Context, uid string, doc UML) (string, error) {
	id := s.newID()
	doc.Timestamp = s.timestamp()

	err := s.store.RunTransaction(ctx, func(tx Tx) error {
		user, err := tx.GetUser(uid)
		if err != nil {
			return fmt.Errorf("loading user %s: %w", uid, err)
		}
		if err := tx.SetUML(id, &doc); err != nil {
			return err
		}
		user.SavedUML = append(user.SavedUML, id)
		return tx.SetUser(uid, user)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// CopyDiagram saves a public copy of id into uid's library.
func (s *Service) CopyDiagram(ctx context.Context, uid, id string) (string, error) {
	newID := s.newID()

	err := s.store.RunTransaction(ctx, func(tx Tx) error {
		user, err := tx.GetUser(uid)
		if err != nil {
			return fmt.Errorf("loading user %s: %w", uid, err)
		}
		src, err := tx.GetUML(id)
		if err != nil {
			return fmt.Errorf("loading uml %s: %w", id, err)
		}

		cp := UML{
			Content:     src.Content,
			Privacy:     "public",
			Name:        src.Name + "-copy",
			Description: src.Description,
			Timestamp:   s.timestamp(),
			Diagram:     src.Diagram,
		}
		if err := tx.SetUML(newID, &cp); err != nil {
			return err
		}
		user.SavedUML = append(user.SavedUML, newID)
		return tx.SetUser(uid, user)
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

// UpdateDiagram overwrites every field of id and refreshes its timestamp.
func (s *Service) UpdateDiagram(ctx context.Context, id string, doc UML) error {
	doc.Timestamp = s.timestamp()
	return s.store.RunTransaction(ctx, func(tx Tx) error {
		return tx.SetUML(id, &doc)
	})
}

// DeleteDiagram removes id and drops exactly that id from uid's savedUML.
func (s *Service) DeleteDiagram(ctx context.Context, uid, id string) error {
	return s.store.RunTransaction(ctx, func(tx Tx) error {
		user, err := tx.GetUser(uid)
		if err != nil {
			return fmt.Errorf("loading user %s: %w", uid, err)
		}
		if err := tx.DeleteUML(id); err != nil {
			return err
		}

		kept := user.SavedUML[:0]
		for _, saved := range user.SavedUML {
			if saved != id {
				kept = append(kept, saved)
			}
		}
		user.SavedUML = kept
		return tx.SetUser(uid, user)
	})
}

// DeleteAccount removes the user document and every diagram it owns.
func (s *Service) DeleteAccount(ctx context.Context, uid string) error {
	return s.store.RunTransaction(ctx, func(tx Tx) error {
		user, err := tx.GetUser(uid)
		if err != nil {
			return fmt.Errorf("loading user %s: %w", uid, err)
		}
		for _, id := range user.SavedUML {
			if err := tx.DeleteUML(id); err != nil {
				return err
			}
		}
		return tx.DeleteUser(uid)
	})
}

func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
}
