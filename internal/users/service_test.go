package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/praxis-hq/praxis/internal/shared"
)

type memoryRepo struct {
	seq    int64
	users  map[int64]User
	hashes map[int64]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[int64]User{}, hashes: map[int64]string{}}
}

func (m *memoryRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryRepo) ListAdmins(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range m.users {
		if u.IsAdmin {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) Create(ctx context.Context, input NewUser, passwordHash string) (User, error) {
	for _, u := range m.users {
		if u.Username == input.Username || u.Email == input.Email {
			return User{}, shared.ErrConflict
		}
	}
	m.seq++
	u := User{ID: m.seq, Name: input.Name, Username: input.Username, Email: input.Email}
	m.users[u.ID] = u
	m.hashes[u.ID] = passwordHash
	return u, nil
}

func (m *memoryRepo) Update(ctx context.Context, id int64, update UserUpdate) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	if update.Name != "" {
		u.Name = update.Name
	}
	if update.Email != "" {
		u.Email = update.Email
	}
	m.users[id] = u
	return u, nil
}

func (m *memoryRepo) SetAdmin(ctx context.Context, id int64, isAdmin bool) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	u.IsAdmin = isAdmin
	m.users[id] = u
	return u, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func TestRegisterHashesPasswordAndNormalises(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	u, err := svc.Register(context.Background(), NewUser{
		Name:     "  Dana Reyes ",
		Username: "dana",
		Email:    " Dana@Example.COM ",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, "Dana Reyes", u.Name)
	require.Equal(t, "dana@example.com", u.Email)

	hash := repo.hashes[u.ID]
	require.NotEqual(t, "hunter22", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter22")))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, NewUser{Name: "A", Username: "dana", Email: "a@x.io", Password: "p1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, NewUser{Name: "B", Username: "dana", Email: "b@x.io", Password: "p2"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestSetAdminAndFindUserByID(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, NewUser{Name: "A", Username: "a", Email: "a@x.io", Password: "p"})
	require.NoError(t, err)

	rec, err := svc.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, rec.IsAdmin)

	_, err = svc.SetAdmin(ctx, u.ID, true)
	require.NoError(t, err)

	rec, err = svc.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, rec.IsAdmin)

	_, err = svc.FindUserByID(ctx, 999)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
