package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/praxis-hq/praxis/internal/authz"
	"github.com/praxis-hq/praxis/internal/feedback"
	jobmetrics "github.com/praxis-hq/praxis/internal/jobs"
	"github.com/praxis-hq/praxis/internal/session"
)

const (
	// TaskFeedbackDigest summarises yesterday's completed sessions for their trainers.
	TaskFeedbackDigest = "feedback:digest"
)

// FeedbackDigestPayload carries scheduling metadata.
type FeedbackDigestPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewFeedbackDigestTask constructs an Asynq task for feedback digests.
func NewFeedbackDigestTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(FeedbackDigestPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFeedbackDigest, body, asynq.Queue(QueueDefault)), nil
}

// SessionBrowser exposes the full session listing.
type SessionBrowser interface {
	List(ctx context.Context) ([]session.Session, error)
}

// FeedbackSummarizer aggregates feedback for one session.
type FeedbackSummarizer interface {
	Summarize(ctx context.Context, sessionID int64) (feedback.Summary, error)
}

// FeedbackDigestJob mails trainers and moderators a summary of the
// feedback collected in their recently completed sessions.
type FeedbackDigestJob struct {
	Sessions SessionBrowser
	Feedback FeedbackSummarizer
	Users    UserGetter
	Client   EmailEnqueuer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewFeedbackDigestJob wires dependencies for the digest handler.
func NewFeedbackDigestJob(sessions SessionBrowser, fb FeedbackSummarizer, users UserGetter, client EmailEnqueuer, logger *slog.Logger, metrics *jobmetrics.Metrics) *FeedbackDigestJob {
	return &FeedbackDigestJob{
		Sessions: sessions,
		Feedback: fb,
		Users:    users,
		Client:   client,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskFeedbackDigest tasks.
func (j *FeedbackDigestJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sessions == nil || j.Feedback == nil || j.Users == nil || j.Client == nil {
		return errors.New("feedback digest: handler not configured")
	}
	var payload FeedbackDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskFeedbackDigest)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	sessions, err := j.Sessions.List(ctx)
	if err != nil {
		resultErr = err
		j.logger().Error("list sessions", slog.Any("error", err))
		return resultErr
	}

	yesterday := j.clock().AddDate(0, 0, -1)
	y, m, d := yesterday.Date()
	for _, sess := range sessions {
		if sess.Status != session.StatusCompleted {
			continue
		}
		sy, sm, sd := sess.Date.Date()
		if sy != y || sm != m || sd != d {
			continue
		}
		summary, err := j.Feedback.Summarize(ctx, sess.ID)
		if err != nil {
			j.logger().Warn("summarize session", slog.Int64("session_id", sess.ID), slog.Any("error", err))
			continue
		}
		if summary.Count == 0 {
			continue
		}
		for _, a := range sess.Assignments {
			if a.Role != authz.RoleTrainer && a.Role != authz.RoleModerator {
				continue
			}
			user, err := j.Users.Get(ctx, a.UserID)
			if err != nil {
				j.logger().Warn("resolve recipient", slog.Int64("user_id", a.UserID), slog.Any("error", err))
				continue
			}
			mail := SendEmailPayload{
				To:      user.Email,
				Subject: fmt.Sprintf("Feedback digest: %s", sess.Title),
				Body: fmt.Sprintf("Hi %s,\n\nThe session %q collected %d feedback entries with a mean score of %.1f.\n",
					user.Name, sess.Title, summary.Count, summary.MeanScore),
			}
			if _, err := j.Client.EnqueueSendEmail(ctx, mail); err != nil {
				resultErr = err
				j.logger().Error("enqueue digest", slog.Int64("session_id", sess.ID), slog.Any("error", err))
				return resultErr
			}
		}
	}
	return resultErr
}

func (j *FeedbackDigestJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
