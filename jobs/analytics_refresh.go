package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/praxis-hq/praxis/internal/analytics"
	jobmetrics "github.com/praxis-hq/praxis/internal/jobs"
	"github.com/praxis-hq/praxis/internal/training"
)

const (
	// TaskAnalyticsRefresh invalidates and re-warms analytics caches.
	TaskAnalyticsRefresh = "analytics:refresh"
)

// AnalyticsRefreshPayload carries scheduling metadata.
type AnalyticsRefreshPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewAnalyticsRefreshTask constructs an Asynq task for the nightly refresh.
func NewAnalyticsRefreshTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(AnalyticsRefreshPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsRefresh, body, asynq.Queue(QueueDefault)), nil
}

// TrainingBrowser exposes the training listing the refresh warms.
type TrainingBrowser interface {
	List(ctx context.Context) ([]training.Training, error)
}

// AnalyticsRefreshJob advances the cache version and pre-computes program
// analytics so morning dashboard loads hit warm keys.
type AnalyticsRefreshJob struct {
	Cache     *analytics.Cache
	Analytics *analytics.Service
	Trainings TrainingBrowser
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// Handle processes TaskAnalyticsRefresh tasks.
func (j *AnalyticsRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Cache == nil || j.Analytics == nil || j.Trainings == nil {
		return errors.New("analytics refresh: handler not configured")
	}
	var payload AnalyticsRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskAnalyticsRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Cache.Bump(ctx); err != nil {
		resultErr = err
		j.logger().Error("bump analytics cache", slog.Any("error", err))
		return resultErr
	}

	trainings, err := j.Trainings.List(ctx)
	if err != nil {
		resultErr = err
		j.logger().Error("list trainings", slog.Any("error", err))
		return resultErr
	}
	warmed := 0
	for _, tr := range trainings {
		if _, err := j.Analytics.ForProgram(ctx, tr.ID); err != nil {
			j.logger().Warn("warm program analytics", slog.Int64("training_id", tr.ID), slog.Any("error", err))
			continue
		}
		warmed++
	}
	j.logger().Info("analytics refresh finished", slog.Int("warmed", warmed))
	return resultErr
}

func (j *AnalyticsRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
