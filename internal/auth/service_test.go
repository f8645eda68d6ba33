package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/praxis-hq/praxis/internal/shared"
)

type memoryRepo struct {
	byEmail map[string]*User
	byID    map[int64]*User
}

func (m *memoryRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{ID: 7, Email: "dana@example.com", PasswordHash: string(hash), IsAdmin: true}
	repo := &memoryRepo{
		byEmail: map[string]*User{user.Email: user},
		byID:    map[int64]*User{user.ID: user},
	}
	return NewService(repo, NewTokenStore(client, time.Hour)), mr
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.Login(ctx, "dana@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)
	require.NotEmpty(t, token)

	ident, err := svc.ResolveIdentity(ctx, token)
	require.NoError(t, err)
	require.Equal(t, int64(7), ident.UserID)
	require.True(t, ident.IsAdmin)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "dana@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, token, err := svc.Login(ctx, "dana@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.ResolveIdentity(ctx, token)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestTokenExpires(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, token, err := svc.Login(ctx, "dana@example.com", "hunter22")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = svc.ResolveIdentity(ctx, token)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestResolveIdentityUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ResolveIdentity(context.Background(), "not-a-token")
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}
