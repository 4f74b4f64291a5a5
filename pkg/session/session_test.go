package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/session"
)

var alice = entitlement.Identity{UserID: "u-1", Email: "alice@invoice.az"}

func TestSession_Login(t *testing.T) {
	t.Parallel()

	t.Run("stores identity and token", func(t *testing.T) {
		t.Parallel()
		s := session.New()
		require.NoError(t, s.Login(alice, "tok"))

		assert.Equal(t, alice, s.Identity())
		assert.Equal(t, "tok", s.Token())
		assert.Empty(t, s.ActiveBusiness())
		assert.True(t, s.Current().Authenticated())
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		t.Parallel()
		s := session.New()
		err := s.Login(entitlement.Identity{Email: "x@y.z"}, "tok")
		assert.ErrorIs(t, err, session.ErrInvalidIdentity)
		assert.False(t, s.Current().Authenticated())
	})

	t.Run("resets active business", func(t *testing.T) {
		t.Parallel()
		s := session.New()
		require.NoError(t, s.Login(alice, "tok"))
		require.NoError(t, s.SwitchBusiness("b-1"))
		require.NoError(t, s.Login(entitlement.Identity{UserID: "u-2"}, "tok2"))
		assert.Empty(t, s.ActiveBusiness())
	})
}

func TestSession_SwitchBusiness(t *testing.T) {
	t.Parallel()

	t.Run("requires login", func(t *testing.T) {
		t.Parallel()
		s := session.New()
		assert.ErrorIs(t, s.SwitchBusiness("b-1"), session.ErrNotAuthenticated)
	})

	t.Run("same business does not notify", func(t *testing.T) {
		t.Parallel()
		s := session.New()
		require.NoError(t, s.Login(alice, "tok"))
		require.NoError(t, s.SwitchBusiness("b-1"))

		var calls int
		s.Subscribe(func(session.Change) { calls++ })
		require.NoError(t, s.SwitchBusiness("b-1"))
		assert.Zero(t, calls)
	})
}

func TestSession_Subscribe(t *testing.T) {
	t.Parallel()

	s := session.New()
	var got []session.Change
	unsubscribe := s.Subscribe(func(c session.Change) { got = append(got, c) })

	require.NoError(t, s.Login(alice, "tok"))
	require.NoError(t, s.SwitchBusiness("b-1"))
	require.NoError(t, s.SwitchBusiness("b-2"))
	s.Logout()
	s.Logout()

	require.Len(t, got, 4)
	assert.Equal(t, session.ChangeLogin, got[0].Kind)
	assert.Equal(t, alice, got[0].Next.Identity)

	assert.Equal(t, session.ChangeBusiness, got[1].Kind)
	assert.Equal(t, "b-1", got[1].Next.BusinessID)
	assert.Equal(t, "b-1", got[2].Prev.BusinessID)
	assert.Equal(t, "b-2", got[2].Next.BusinessID)

	assert.Equal(t, session.ChangeLogout, got[3].Kind)
	assert.Equal(t, "b-2", got[3].Prev.BusinessID)
	assert.False(t, got[3].Next.Authenticated())

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Login(alice, "tok"))
	assert.Len(t, got, 4)
}

func TestSession_SubscribeOrder(t *testing.T) {
	t.Parallel()

	s := session.New()
	var order []int
	for i := range 5 {
		s.Subscribe(func(session.Change) { order = append(order, i) })
	}
	require.NoError(t, s.Login(alice, "tok"))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSession_Concurrent(t *testing.T) {
	t.Parallel()

	s := session.New()
	require.NoError(t, s.Login(alice, "tok"))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.SwitchBusiness([]string{"a", "b"}[i%2])
		}()
		go func() {
			defer wg.Done()
			st := s.Current()
			assert.Equal(t, alice, st.Identity)
		}()
	}
	wg.Wait()
	assert.Contains(t, []string{"a", "b"}, s.ActiveBusiness())
}

func TestSession_Roles(t *testing.T) {
	t.Parallel()

	owner := session.RoleSourceFunc(func(_ context.Context, userID, businessID string) (session.Role, error) {
		if userID == "u-1" && businessID == "b-1" {
			return session.RoleOwner, nil
		}
		return session.RoleMember, nil
	})

	t.Run("resolve refreshes hint", func(t *testing.T) {
		t.Parallel()
		s := session.New()
		require.NoError(t, s.Login(alice, "tok"))
		require.NoError(t, s.SwitchBusiness("b-1"))

		_, ok := s.RoleHint("b-1")
		assert.False(t, ok)

		role, err := s.ResolveRole(context.Background(), owner)
		require.NoError(t, err)
		assert.Equal(t, session.RoleOwner, role)

		hint, ok := s.RoleHint("b-1")
		assert.True(t, ok)
		assert.Equal(t, session.RoleOwner, hint)
	})

	t.Run("is owner always revalidates", func(t *testing.T) {
		t.Parallel()
		s := session.New()
		require.NoError(t, s.Login(alice, "tok"))
		require.NoError(t, s.SwitchBusiness("b-1"))

		calls := 0
		demoted := session.RoleSourceFunc(func(context.Context, string, string) (session.Role, error) {
			calls++
			if calls == 1 {
				return session.RoleOwner, nil
			}
			return session.RoleMember, nil
		})

		isOwner, err := s.IsOwner(context.Background(), demoted)
		require.NoError(t, err)
		assert.True(t, isOwner)

		isOwner, err = s.IsOwner(context.Background(), demoted)
		require.NoError(t, err)
		assert.False(t, isOwner)
		assert.Equal(t, 2, calls)

		hint, _ := s.RoleHint("b-1")
		assert.Equal(t, session.RoleMember, hint)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		s := session.New()
		_, err := s.ResolveRole(context.Background(), owner)
		assert.ErrorIs(t, err, session.ErrNotAuthenticated)

		require.NoError(t, s.Login(alice, "tok"))
		_, err = s.ResolveRole(context.Background(), owner)
		assert.ErrorIs(t, err, session.ErrNoActiveBusiness)

		_, err = s.ResolveRole(context.Background(), nil)
		assert.ErrorIs(t, err, session.ErrNoRoleSource)

		require.NoError(t, s.SwitchBusiness("b-1"))
		boom := errors.New("boom")
		_, err = s.IsOwner(context.Background(), session.RoleSourceFunc(func(context.Context, string, string) (session.Role, error) {
			return "", boom
		}))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("logout during lookup discards answer", func(t *testing.T) {
		t.Parallel()
		s := session.New()
		require.NoError(t, s.Login(alice, "tok"))
		require.NoError(t, s.SwitchBusiness("b-1"))

		_, err := s.ResolveRole(context.Background(), session.RoleSourceFunc(func(context.Context, string, string) (session.Role, error) {
			s.Logout()
			return session.RoleOwner, nil
		}))
		assert.ErrorIs(t, err, session.ErrSessionChanged)
		_, ok := s.RoleHint("b-1")
		assert.False(t, ok)
	})

	t.Run("logout clears hints", func(t *testing.T) {
		t.Parallel()
		s := session.New()
		require.NoError(t, s.Login(alice, "tok"))
		require.NoError(t, s.SwitchBusiness("b-1"))
		_, err := s.ResolveRole(context.Background(), owner)
		require.NoError(t, err)

		s.Logout()
		_, ok := s.RoleHint("b-1")
		assert.False(t, ok)
	})
}
