package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/skilltrack/internal/session"
	"github.com/pribylovaa/skilltrack/mocks"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	withSession := session.NewMemory(session.Credentials{AccessToken: "a", RefreshToken: "r"})
	empty := session.NewMemory()

	tcs := []struct {
		name   string
		store  session.Store
		access Access
		want   Decision
	}{
		{"public_no_session", empty, Public, Decision{Allow: true}},
		{"public_with_session", withSession, Public, Decision{Allow: true}},
		{"protected_no_session", empty, Protected, Decision{Redirect: RouteLogin}},
		{"protected_with_session", withSession, Protected, Decision{Allow: true}},
		{"guest_no_session", empty, GuestOnly, Decision{Allow: true}},
		{"guest_with_session", withSession, GuestOnly, Decision{Redirect: RouteDashboard}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Check(context.Background(), tc.store, tc.access))
		})
	}
}

// TestCheck_StoreError_TreatedAsNoSession — сбой чтения хранилища равносилен
// отсутствию сессии: защищённая команда уводит на вход, гостевая разрешена.
func TestCheck_StoreError_TreatedAsNoSession(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().Get(gomock.Any()).Return(session.Credentials{}, errors.New("disk on fire")).Times(2)

	require.Equal(t, Decision{Redirect: RouteLogin}, Check(context.Background(), st, Protected))
	require.Equal(t, Decision{Allow: true}, Check(context.Background(), st, GuestOnly))
}

func TestAccess_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "public", Public.String())
	require.Equal(t, "protected", Protected.String())
	require.Equal(t, "guest_only", GuestOnly.String())
}
