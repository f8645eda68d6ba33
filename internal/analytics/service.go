package analytics

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/praxis-hq/praxis/internal/session"
	"github.com/praxis-hq/praxis/internal/training"
)

// TrainingSource provides the program lookups analytics needs.
type TrainingSource interface {
	ListByUser(ctx context.Context, userID int64) ([]training.Training, error)
	Get(ctx context.Context, id int64) (training.Training, error)
}

// SessionSource provides the session lookups analytics needs.
type SessionSource interface {
	ListByUser(ctx context.Context, userID int64) ([]session.Session, error)
	List(ctx context.Context) ([]session.Session, error)
}

// UserAnalytics summarises one user's participation.
type UserAnalytics struct {
	UserID            int64 `json:"userId"`
	TotalPrograms     int   `json:"totalPrograms"`
	ActivePrograms    int   `json:"activePrograms"`
	UpcomingPrograms  int   `json:"upcomingPrograms"`
	CompletedPrograms int   `json:"completedPrograms"`
	TotalSessions     int   `json:"totalSessions"`
	TodaySessions     int   `json:"todaySessions"`
	UpcomingSessions  int   `json:"upcomingSessions"`
}

// ProgramAnalytics summarises one training program's schedule progress.
type ProgramAnalytics struct {
	TrainingID       int64   `json:"trainingId"`
	TotalSessions    int     `json:"totalSessions"`
	UpcomingSessions int     `json:"upcomingSessions"`
	ProgressPercent  float64 `json:"progressPercent"`
}

// Service computes participation analytics, memoised in Redis.
type Service struct {
	trainings TrainingSource
	sessions  SessionSource
	cache     *Cache
	now       func() time.Time
}

// NewService builds a Service instance.
func NewService(trainings TrainingSource, sessions SessionSource, cache *Cache) *Service {
	return &Service{trainings: trainings, sessions: sessions, cache: cache, now: time.Now}
}

// ForUser aggregates a user's programs and sessions. Program and session
// listings are independent reads, so they run concurrently.
func (s *Service) ForUser(ctx context.Context, userID int64) (UserAnalytics, error) {
	key, err := s.cache.BuildKey(ctx, "analytics", "user", strconv.FormatInt(userID, 10))
	if err != nil {
		return UserAnalytics{}, err
	}
	var out UserAnalytics
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		var programs []training.Training
		var sessions []session.Session
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			programs, err = s.trainings.ListByUser(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			sessions, err = s.sessions.ListByUser(gctx, userID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return s.buildUserAnalytics(userID, programs, sessions), nil
	})
	return out, err
}

// ForProgram computes schedule progress for a training.
func (s *Service) ForProgram(ctx context.Context, trainingID int64) (ProgramAnalytics, error) {
	key, err := s.cache.BuildKey(ctx, "analytics", "program", strconv.FormatInt(trainingID, 10))
	if err != nil {
		return ProgramAnalytics{}, err
	}
	var out ProgramAnalytics
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		if _, err := s.trainings.Get(ctx, trainingID); err != nil {
			return nil, err
		}
		all, err := s.sessions.List(ctx)
		if err != nil {
			return nil, err
		}
		today := dateOnly(s.now())
		result := ProgramAnalytics{TrainingID: trainingID}
		for _, sess := range all {
			if sess.TrainingID != trainingID {
				continue
			}
			result.TotalSessions++
			if sess.Date.After(today) && sess.Status != session.StatusCancelled {
				result.UpcomingSessions++
			}
		}
		if result.TotalSessions > 0 {
			done := result.TotalSessions - result.UpcomingSessions
			result.ProgressPercent = float64(done) / float64(result.TotalSessions) * 100
		}
		return result, nil
	})
	return out, err
}

func (s *Service) buildUserAnalytics(userID int64, programs []training.Training, sessions []session.Session) UserAnalytics {
	today := dateOnly(s.now())
	out := UserAnalytics{UserID: userID, TotalPrograms: len(programs), TotalSessions: len(sessions)}
	for _, p := range programs {
		switch {
		case p.EndDate.Before(today):
			out.CompletedPrograms++
		case p.StartDate.After(today):
			out.UpcomingPrograms++
		default:
			out.ActivePrograms++
		}
	}
	for _, sess := range sessions {
		if sess.Status == session.StatusCancelled || sess.Status == session.StatusCompleted {
			continue
		}
		switch {
		case sess.Date.Equal(today):
			out.TodaySessions++
		case sess.Date.After(today):
			out.UpcomingSessions++
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
