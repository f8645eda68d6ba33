package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hq/praxis/internal/session"
	"github.com/praxis-hq/praxis/internal/shared"
	"github.com/praxis-hq/praxis/internal/training"
)

type stubTrainings struct {
	byUser []training.Training
	all    map[int64]training.Training
}

func (s *stubTrainings) ListByUser(ctx context.Context, userID int64) ([]training.Training, error) {
	return s.byUser, nil
}

func (s *stubTrainings) Get(ctx context.Context, id int64) (training.Training, error) {
	t, ok := s.all[id]
	if !ok {
		return training.Training{}, shared.ErrNotFound
	}
	return t, nil
}

type stubSessions struct {
	byUser []session.Session
	all    []session.Session
}

func (s *stubSessions) ListByUser(ctx context.Context, userID int64) ([]session.Session, error) {
	return s.byUser, nil
}

func (s *stubSessions) List(ctx context.Context) ([]session.Session, error) {
	return s.all, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService(t *testing.T, trainings *stubTrainings, sessions *stubSessions) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(trainings, sessions, NewCache(client, time.Minute))
	svc.now = func() time.Time { return day("2025-06-15") }
	return svc
}

func TestForUserBucketsProgramsAndSessions(t *testing.T) {
	trainings := &stubTrainings{byUser: []training.Training{
		{ID: 1, StartDate: day("2025-01-01"), EndDate: day("2025-03-01")},
		{ID: 2, StartDate: day("2025-06-01"), EndDate: day("2025-07-01")},
		{ID: 3, StartDate: day("2025-09-01"), EndDate: day("2025-10-01")},
	}}
	sessions := &stubSessions{byUser: []session.Session{
		{ID: 10, Date: day("2025-06-15"), Status: session.StatusScheduled},
		{ID: 11, Date: day("2025-06-20"), Status: session.StatusScheduled},
		{ID: 12, Date: day("2025-06-22"), Status: session.StatusCancelled},
		{ID: 13, Date: day("2025-06-01"), Status: session.StatusCompleted},
	}}
	svc := newTestService(t, trainings, sessions)

	out, err := svc.ForUser(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), out.UserID)
	require.Equal(t, 3, out.TotalPrograms)
	require.Equal(t, 1, out.CompletedPrograms)
	require.Equal(t, 1, out.ActivePrograms)
	require.Equal(t, 1, out.UpcomingPrograms)
	require.Equal(t, 4, out.TotalSessions)
	require.Equal(t, 1, out.TodaySessions)
	require.Equal(t, 1, out.UpcomingSessions)
}

func TestForUserServesCachedValue(t *testing.T) {
	trainings := &stubTrainings{byUser: []training.Training{{ID: 1, StartDate: day("2025-06-01"), EndDate: day("2025-07-01")}}}
	sessions := &stubSessions{}
	svc := newTestService(t, trainings, sessions)

	first, err := svc.ForUser(context.Background(), 7)
	require.NoError(t, err)

	// Mutating the source must not change the cached answer.
	trainings.byUser = nil
	second, err := svc.ForUser(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestForProgramComputesProgress(t *testing.T) {
	trainings := &stubTrainings{all: map[int64]training.Training{
		5: {ID: 5, StartDate: day("2025-06-01"), EndDate: day("2025-08-01")},
	}}
	sessions := &stubSessions{all: []session.Session{
		{ID: 1, TrainingID: 5, Date: day("2025-06-10"), Status: session.StatusCompleted},
		{ID: 2, TrainingID: 5, Date: day("2025-06-14"), Status: session.StatusCompleted},
		{ID: 3, TrainingID: 5, Date: day("2025-06-20"), Status: session.StatusScheduled},
		{ID: 4, TrainingID: 5, Date: day("2025-06-25"), Status: session.StatusCancelled},
		{ID: 5, TrainingID: 9, Date: day("2025-06-20"), Status: session.StatusScheduled},
	}}
	svc := newTestService(t, trainings, sessions)

	out, err := svc.ForProgram(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(5), out.TrainingID)
	require.Equal(t, 4, out.TotalSessions)
	require.Equal(t, 1, out.UpcomingSessions)
	require.InDelta(t, 75.0, out.ProgressPercent, 0.001)
}

func TestForProgramUnknownTraining(t *testing.T) {
	svc := newTestService(t, &stubTrainings{all: map[int64]training.Training{}}, &stubSessions{})

	_, err := svc.ForProgram(context.Background(), 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
