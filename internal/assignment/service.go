package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/praxis-hq/praxis/internal/authz"
	"github.com/praxis-hq/praxis/internal/shared"
)

// SessionChecker verifies that a session exists before coursework is
// attached to it.
type SessionChecker interface {
	FindSessionByID(ctx context.Context, id int64) (*authz.SessionRecord, error)
}

// Service handles assignment business logic.
type Service struct {
	repo     RepositoryPort
	sessions SessionChecker
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, sessions SessionChecker) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// ListAll returns every assignment.
func (s *Service) ListAll(ctx context.Context) ([]Assignment, error) {
	return s.repo.ListAll(ctx)
}

// ListBySession returns coursework for one session.
func (s *Service) ListBySession(ctx context.Context, sessionID int64) ([]Assignment, error) {
	if _, err := s.sessions.FindSessionByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListBySession(ctx, sessionID)
}

// Get fetches one assignment, verifying it belongs to the session.
func (s *Service) Get(ctx context.Context, sessionID, id int64) (Assignment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if a.SessionID != sessionID {
		return Assignment{}, errNotInSession
	}
	return a, nil
}

// Create attaches new coursework to a session.
func (s *Service) Create(ctx context.Context, input NewAssignment) (Assignment, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Assignment{}, errors.New("assignment: title required")
	}
	if _, err := s.sessions.FindSessionByID(ctx, input.SessionID); err != nil {
		return Assignment{}, err
	}
	return s.repo.Create(ctx, input)
}

// Update patches coursework within its session.
func (s *Service) Update(ctx context.Context, sessionID, id int64, input NewAssignment) (Assignment, error) {
	if _, err := s.Get(ctx, sessionID, id); err != nil {
		return Assignment{}, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Assignment{}, errors.New("assignment: title required")
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes coursework within its session.
func (s *Service) Delete(ctx context.Context, sessionID, id int64) error {
	if _, err := s.Get(ctx, sessionID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Submit records a candidate hand-in.
func (s *Service) Submit(ctx context.Context, sessionID int64, input NewSubmission) (Submission, error) {
	if _, err := s.Get(ctx, sessionID, input.AssignmentID); err != nil {
		return Submission{}, err
	}
	if strings.TrimSpace(input.SubmissionURL) == "" {
		return Submission{}, errors.New("assignment: submission url required")
	}
	return s.repo.Submit(ctx, input)
}

// ListSubmissions returns hand-ins for an assignment within its session.
func (s *Service) ListSubmissions(ctx context.Context, sessionID, id int64) ([]Submission, error) {
	if _, err := s.Get(ctx, sessionID, id); err != nil {
		return nil, err
	}
	return s.repo.ListSubmissions(ctx, id)
}

// An assignment addressed through the wrong session reads as missing.
var errNotInSession = fmt.Errorf("assignment not in session: %w", shared.ErrNotFound)
