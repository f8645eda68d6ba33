package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/praxis-hq/praxis/internal/shared"
)

type memoryUsers struct {
	users map[int64]*UserRecord
	err   error
}

func (m *memoryUsers) FindUserByID(ctx context.Context, id int64) (*UserRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

type memorySessions struct {
	sessions map[int64]*SessionRecord
	err      error
}

func (m *memorySessions) FindSessionByID(ctx context.Context, id int64) (*SessionRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

type memoryTrainings struct {
	trainings map[int64]*TrainingRecord
}

func (m *memoryTrainings) FindTrainingByID(ctx context.Context, id int64) (*TrainingRecord, error) {
	t, ok := m.trainings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

func newFixtureService() *Service {
	users := &memoryUsers{users: map[int64]*UserRecord{
		1: {ID: 1, IsAdmin: true},
		2: {ID: 2},
		3: {ID: 3},
		4: {ID: 4, IsAdmin: true},
	}}
	sessions := &memorySessions{sessions: map[int64]*SessionRecord{
		10: {ID: 10, TrainingID: 100, Assignments: []RoleGrant{
			{UserID: 2, Role: RoleTrainer},
			{UserID: 3, Role: RoleCandidate},
		}},
		11: {ID: 11, TrainingID: 100},
	}}
	trainings := &memoryTrainings{trainings: map[int64]*TrainingRecord{
		100: {ID: 100, Memberships: []RoleGrant{
			{UserID: 1, Role: RoleAdmin},
			{UserID: 4, Role: RoleCandidate},
		}},
	}}
	return NewService(users, sessions, trainings)
}

func TestIsGlobalAdmin(t *testing.T) {
	svc := newFixtureService()
	ctx := context.Background()

	ok, err := svc.IsGlobalAdmin(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.IsGlobalAdmin(ctx, 2)
	require.NoError(t, err)
	require.False(t, ok)

	// Unknown users deny without error.
	ok, err = svc.IsGlobalAdmin(ctx, 999)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsTrainingAdminRequiresBothGrants(t *testing.T) {
	svc := newFixtureService()
	ctx := context.Background()

	// Global admin with an admin membership in the owning training.
	ok, err := svc.IsTrainingAdmin(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, ok)

	// Global admin without an admin membership.
	ok, err = svc.IsTrainingAdmin(ctx, 4, 10)
	require.NoError(t, err)
	require.False(t, ok)

	// Non-admin user, even if they were listed as a training admin,
	// fails the global flag check.
	ok, err = svc.IsTrainingAdmin(ctx, 2, 10)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionRolePredicates(t *testing.T) {
	svc := newFixtureService()
	ctx := context.Background()

	ok, err := svc.IsTrainer(ctx, 2, 10)
	require.NoError(t, err)
	require.True(t, ok)

	// Role must match exactly: a trainer is not a moderator.
	ok, err = svc.IsModerator(ctx, 2, 10)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.IsCandidate(ctx, 3, 10)
	require.NoError(t, err)
	require.True(t, ok)

	// Session with no assignments denies everyone.
	ok, err = svc.IsTrainer(ctx, 2, 11)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMissingSessionDeniesWithoutError(t *testing.T) {
	svc := newFixtureService()
	ctx := context.Background()

	ok, err := svc.IsTrainer(ctx, 2, 999)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.IsTrainingAdmin(ctx, 1, 999)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStorageErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(
		&memoryUsers{err: boom},
		&memorySessions{err: boom},
		&memoryTrainings{},
	)

	_, err := svc.IsGlobalAdmin(context.Background(), 1)
	require.ErrorIs(t, err, boom)

	_, err = svc.IsTrainer(context.Background(), 1, 10)
	require.ErrorIs(t, err, boom)
}

func TestIsOwner(t *testing.T) {
	svc := newFixtureService()

	require.True(t, svc.IsOwner(5, 5))
	require.False(t, svc.IsOwner(5, 6))
	require.False(t, svc.IsOwner(5, 0))
	require.False(t, svc.IsOwner(0, 0))
}

func TestPredicatesAreIdempotent(t *testing.T) {
	svc := newFixtureService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := svc.IsTrainer(ctx, 2, 10)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestParseRole(t *testing.T) {
	require.Equal(t, RoleAdmin, ParseRole("admin"))
	require.Equal(t, RoleTrainer, ParseRole(" Trainer "))
	require.Equal(t, RoleTrainingAdmin, ParseRole("training_admin"))
	require.Equal(t, RoleUnknown, ParseRole("superuser"))
}
