package feedback

import (
	"context"
	"errors"

	"github.com/praxis-hq/praxis/internal/authz"
)

// SessionChecker verifies session existence and assignment membership.
type SessionChecker interface {
	FindSessionByID(ctx context.Context, id int64) (*authz.SessionRecord, error)
}

// Service handles feedback business logic.
type Service struct {
	repo     RepositoryPort
	sessions SessionChecker
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, sessions SessionChecker) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// Submit records feedback. The receiver must be assigned to the session.
func (s *Service) Submit(ctx context.Context, input NewFeedback) (Feedback, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return Feedback{}, errors.New("feedback: rating must be between 1 and 5")
	}
	sess, err := s.sessions.FindSessionByID(ctx, input.SessionID)
	if err != nil {
		return Feedback{}, err
	}
	assigned := false
	for _, a := range sess.Assignments {
		if a.UserID == input.ToUserID {
			assigned = true
			break
		}
	}
	if !assigned {
		return Feedback{}, errors.New("feedback: receiver not assigned to session")
	}
	return s.repo.Create(ctx, input)
}

// ListBySession returns all feedback for a session.
func (s *Service) ListBySession(ctx context.Context, sessionID int64) ([]Feedback, error) {
	if _, err := s.sessions.FindSessionByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListBySession(ctx, sessionID)
}

// Summarize aggregates a session's feedback.
func (s *Service) Summarize(ctx context.Context, sessionID int64) (Summary, error) {
	return s.repo.SummaryBySession(ctx, sessionID)
}
