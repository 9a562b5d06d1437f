package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront/internal/records/memserver"
	"github.com/dwikikusuma/storefront/pkg/httpx"
)

type transition struct{ prev, next string }

func record(s *Session) *[]transition {
	var got []transition
	s.Subscribe(func(prev, next string) { got = append(got, transition{prev, next}) })
	return &got
}

func TestSession_Transitions(t *testing.T) {
	s := NewSession()
	got := record(s)

	s.SignIn(User{ID: "u1"}, "t1")
	s.SignIn(User{ID: "u1", Name: "renamed"}, "t1")
	s.SignIn(User{ID: "u2"}, "t2")
	s.SignOut()
	s.SignOut()

	assert.Equal(t, []transition{{"", "u1"}, {"u1", "u2"}, {"u2", ""}}, *got)
	assert.Equal(t, "", s.CurrentUserID())
	assert.Equal(t, "", s.Token())
}

func TestSession_Unsubscribe(t *testing.T) {
	s := NewSession()
	calls := 0
	unsubscribe := s.Subscribe(func(prev, next string) { calls++ })
	s.SignIn(User{ID: "u1"}, "t")
	unsubscribe()
	s.SignOut()
	assert.Equal(t, 1, calls)
}

func newTestClient(t *testing.T) (*Client, *Session) {
	t.Helper()
	srv := memserver.New()
	srv.SeedUsers(memserver.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Password: "secret", Role: "customer"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	session := NewSession()
	return NewClient(httpx.NewClient(ts.URL, 5*time.Second), session), session
}

func TestClient_Login(t *testing.T) {
	client, session := newTestClient(t)
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.Login(ctx, "ada@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "", session.CurrentUserID())
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := client.Login(ctx, " ", "x")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("success signs the session in", func(t *testing.T) {
		u, err := client.Login(ctx, "ada@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "u1", session.CurrentUserID())
		assert.Equal(t, "mock-jwt-u1", session.Token())

		profile, err := client.Profile(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Ada", profile.Name)
	})

	t.Run("logout", func(t *testing.T) {
		client.Logout()
		assert.Equal(t, "", session.CurrentUserID())
		_, err := client.Profile(ctx)
		assert.ErrorIs(t, err, ErrNotSignedIn)
	})
}

func TestClient_Register(t *testing.T) {
	client, session := newTestClient(t)
	ctx := context.Background()

	_, err := client.Register(ctx, "Ada", "ada@example.com", "pw", "pw")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = client.Register(ctx, "Bob", "bob@example.com", "pw", "other")
	assert.ErrorIs(t, err, ErrInvalidInput)

	u, err := client.Register(ctx, "Bob", "bob@example.com", "pw", "pw")
	require.NoError(t, err)
	assert.Equal(t, "customer", u.Role)
	assert.Equal(t, u.ID, session.CurrentUserID())
}
