package diagram

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestService returns a service with a ticking clock and sequential ids.
func newTestService(store Store) *Service {
	svc := NewService(store)
	clock := time.UnixMilli(1_700_000_000_000)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("uml-%d", n)
	}
	return svc
}

func TestCreateUser(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()

	exists, err := svc.UserExists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, svc.CreateUser(ctx, "u1"))
	assert.ErrorIs(t, svc.CreateUser(ctx, "u1"), ErrUserExists)

	exists, err = svc.UserExists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDiagramLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		svc := newTestService(store)
		ctx := context.Background()
		require.NoError(t, svc.CreateUser(ctx, "u1"))

		first, err := svc.CreateDiagram(ctx, "u1", UML{Name: "first", Content: "@startuml\nclass A\n@enduml", Privacy: "public", Diagram: "data:image/svg+xml;base64,AA"})
		require.NoError(t, err)
		second, err := svc.CreateDiagram(ctx, "u1", UML{Name: "second", Privacy: "private"})
		require.NoError(t, err)

		entries, err := svc.UserDiagrams(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, second, entries[0].ID, "newest first")
		assert.Equal(t, first, entries[1].ID)

		doc, err := svc.Diagram(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, "first", doc.Name)

		require.NoError(t, svc.UpdateDiagram(ctx, first, UML{Name: "renamed", Privacy: "public", Content: "@startuml\n@enduml"}))
		doc, err = svc.Diagram(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, "renamed", doc.Name)
		assert.Empty(t, doc.Diagram, "update overwrites every field")

		entries, err = svc.UserDiagrams(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, first, entries[0].ID, "update refreshes the timestamp")

		require.NoError(t, svc.DeleteDiagram(ctx, "u1", first))
		entries, err = svc.UserDiagrams(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, second, entries[0].ID)

		_, err = svc.Diagram(ctx, first)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteDiagramRemovesOnlyThatID(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, svc.CreateUser(ctx, "u1"))

	var ids []string
	for i := 0; i < 4; i++ {
		id, err := svc.CreateDiagram(ctx, "u1", UML{Name: fmt.Sprint(i)})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, svc.DeleteDiagram(ctx, "u1", ids[1]))

	require.NoError(t, svc.store.RunTransaction(ctx, func(tx Tx) error {
		user, err := tx.GetUser("u1")
		require.NoError(t, err)
		assert.Equal(t, []string{ids[0], ids[2], ids[3]}, user.SavedUML)
		return nil
	}))
}

func TestCreateDiagramUnknownUser(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.CreateDiagram(ctx, "ghost", UML{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.PublicDiagrams(ctx, Filter{Class: true})
	require.NoError(t, err)
	assert.Empty(t, all, "failed transaction leaves no document behind")
}

func TestCopyDiagram(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, svc.CreateUser(ctx, "owner"))
	require.NoError(t, svc.CreateUser(ctx, "fan"))

	src, err := svc.CreateDiagram(ctx, "owner", UML{Name: "orig", Description: "d", Content: "c", Privacy: "private", Diagram: "img"})
	require.NoError(t, err)

	cp, err := svc.CopyDiagram(ctx, "fan", src)
	require.NoError(t, err)
	assert.NotEqual(t, src, cp)

	entries, err := svc.UserDiagrams(ctx, "fan")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got := entries[0]
	assert.Equal(t, cp, got.ID)
	assert.Equal(t, "orig-copy", got.Name)
	assert.Equal(t, "public", got.Privacy)
	assert.Equal(t, "d", got.Description)
	assert.Equal(t, "c", got.Content)
	assert.Equal(t, "img", got.Diagram)

	_, err = svc.CopyDiagram(ctx, "fan", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, svc.CreateUser(ctx, "u1"))
	id, err := svc.CreateDiagram(ctx, "u1", UML{Name: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, "u1"))

	exists, err := svc.UserExists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = svc.Diagram(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, "u1"), ErrNotFound)
}

func TestUserDiagramsSkipsDanglingReferences(t *testing.T) {
	store := NewMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()
	require.NoError(t, store.RunTransaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.SetUML("real", &UML{Name: "real"}))
		return tx.SetUser("u1", &User{SavedUML: []string{"gone", "real"}})
	}))

	entries, err := svc.UserDiagrams(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "real", entries[0].ID)
}

func TestPublicDiagrams(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, svc.CreateUser(ctx, "u1"))

	docs := []UML{
		{Name: "Shop classes", Privacy: "public", Diagram: "img", Content: "@startuml\nclass Cart\n@enduml"},
		{Name: "Traffic light", Privacy: "public", Diagram: "img", Content: "@startuml\n[*] --> Red\n@enduml"},
		{Name: "Checkout flow", Privacy: "public", Diagram: "img", Content: "@startuml\nstart\n:pay;\nstop\n@enduml"},
		{Name: "Login", Privacy: "PUBLIC", Diagram: "img", Content: "@startuml\nparticipant User\n@enduml"},
		{Name: "Signup", Privacy: "public", Diagram: "img", Content: "@startuml\nusecase Register\n@enduml"},
		{Name: "Secret classes", Privacy: "private", Diagram: "img", Content: "class Hidden"},
		{Name: "Unrendered classes", Privacy: "public", Diagram: "", Content: "class Draft"},
	}
	for _, d := range docs {
		_, err := svc.CreateDiagram(ctx, "u1", d)
		require.NoError(t, err)
	}

	names := func(entries []Entry) []string {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.Name)
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no category selected", Filter{}, []string{}},
		{"class", Filter{Class: true}, []string{"Shop classes"}},
		{"state", Filter{State: true}, []string{"Traffic light"}},
		{"activity", Filter{Activity: true}, []string{"Checkout flow"}},
		{"sequence", Filter{Sequence: true}, []string{"Login"}},
		{"use case", Filter{UseCase: true}, []string{"Signup"}},
		{"several, newest first", Filter{Class: true, Sequence: true, UseCase: true}, []string{"Signup", "Login", "Shop classes"}},
		{"name filter is case-insensitive", Filter{Class: true, State: true, NameContains: "SHOP"}, []string{"Shop classes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.PublicDiagrams(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}
