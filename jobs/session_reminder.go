package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/praxis-hq/praxis/internal/jobs"
	"github.com/praxis-hq/praxis/internal/session"
	"github.com/praxis-hq/praxis/internal/users"
)

const (
	// TaskSessionReminder fans out reminder emails for today's sessions.
	TaskSessionReminder = "session:reminder"
)

// SessionReminderPayload carries scheduling metadata.
type SessionReminderPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSessionReminderTask constructs an Asynq task for session reminders.
func NewSessionReminderTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SessionReminderPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionReminder, body, asynq.Queue(QueueDefault)), nil
}

// SessionLister exposes the session reads the reminder needs.
type SessionLister interface {
	ListToday(ctx context.Context) ([]session.Session, error)
}

// UserGetter resolves a user profile for addressing mail.
type UserGetter interface {
	Get(ctx context.Context, id int64) (users.User, error)
}

// EmailEnqueuer hands mail off to the queue.
type EmailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// SessionReminderJob emails every assignee of today's sessions.
type SessionReminderJob struct {
	Sessions SessionLister
	Users    UserGetter
	Client   EmailEnqueuer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// Handle processes TaskSessionReminder tasks.
func (j *SessionReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sessions == nil || j.Users == nil || j.Client == nil {
		return errors.New("session reminder: handler not configured")
	}
	var payload SessionReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskSessionReminder)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	sessions, err := j.Sessions.ListToday(ctx)
	if err != nil {
		resultErr = err
		j.logger().Error("list today's sessions", slog.Any("error", err))
		return resultErr
	}

	sent := 0
	for _, sess := range sessions {
		for _, a := range sess.Assignments {
			user, err := j.Users.Get(ctx, a.UserID)
			if err != nil {
				j.logger().Warn("resolve assignee", slog.Int64("user_id", a.UserID), slog.Any("error", err))
				continue
			}
			mail := SendEmailPayload{
				To:      user.Email,
				Subject: fmt.Sprintf("Reminder: %s today", sess.Title),
				Body: fmt.Sprintf("Hi %s,\n\nYou are assigned as %s to the session %q today from %s to %s.\n",
					user.Name, a.Role, sess.Title, sess.StartTime, sess.EndTime),
			}
			if _, err := j.Client.EnqueueSendEmail(ctx, mail); err != nil {
				resultErr = err
				j.logger().Error("enqueue reminder", slog.Int64("session_id", sess.ID), slog.Any("error", err))
				return resultErr
			}
			sent++
		}
	}
	j.Metrics.AddReminders(sent)
	j.logger().Info("session reminders enqueued", slog.Int("count", sent), slog.Int("sessions", len(sessions)))
	return resultErr
}

func (j *SessionReminderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
