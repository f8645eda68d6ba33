package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hq/praxis/internal/authz"
	"github.com/praxis-hq/praxis/internal/session"
	"github.com/praxis-hq/praxis/internal/shared"
	"github.com/praxis-hq/praxis/internal/users"
)

type stubSessions struct {
	today []session.Session
}

func (s *stubSessions) ListToday(ctx context.Context) ([]session.Session, error) {
	return s.today, nil
}

type stubUsers struct {
	users map[int64]users.User
}

func (s *stubUsers) Get(ctx context.Context, id int64) (users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

type capturingClient struct {
	sent []SendEmailPayload
}

func (c *capturingClient) EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error) {
	c.sent = append(c.sent, payload)
	return &asynq.TaskInfo{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionReminderEnqueuesMailPerAssignee(t *testing.T) {
	sessions := &stubSessions{today: []session.Session{
		{
			ID: 10, Title: "Kickoff", StartTime: "09:00", EndTime: "11:00",
			Assignments: []session.Assignment{
				{UserID: 2, Role: authz.RoleTrainer},
				{UserID: 3, Role: authz.RoleCandidate},
				{UserID: 99, Role: authz.RoleCandidate}, // deleted account, skipped
			},
		},
	}}
	userDir := &stubUsers{users: map[int64]users.User{
		2: {ID: 2, Name: "Dana", Email: "dana@example.com"},
		3: {ID: 3, Name: "Kim", Email: "kim@example.com"},
	}}
	client := &capturingClient{}

	job := &SessionReminderJob{
		Sessions: sessions,
		Users:    userDir,
		Client:   client,
		Logger:   testLogger(),
	}

	task, err := NewSessionReminderTask(time.Now())
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, client.sent, 2)
	require.Equal(t, "dana@example.com", client.sent[0].To)
	require.Contains(t, client.sent[0].Subject, "Kickoff")
	require.Contains(t, client.sent[0].Body, "trainer")
}

func TestSessionReminderSkipsMalformedPayload(t *testing.T) {
	job := &SessionReminderJob{
		Sessions: &stubSessions{},
		Users:    &stubUsers{},
		Client:   &capturingClient{},
		Logger:   testLogger(),
	}

	task := asynq.NewTask(TaskSessionReminder, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
