package session

import (
	"context"
	"errors"
	"strings"

	"github.com/praxis-hq/praxis/internal/authz"
)

// TrainingChecker verifies that a training exists before a session is
// attached to it.
type TrainingChecker interface {
	FindTrainingByID(ctx context.Context, id int64) (*authz.TrainingRecord, error)
}

// Service handles session business logic.
type Service struct {
	repo      RepositoryPort
	trainings TrainingChecker
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, trainings TrainingChecker) *Service {
	return &Service{repo: repo, trainings: trainings}
}

// List returns all sessions.
func (s *Service) List(ctx context.Context) ([]Session, error) {
	return s.repo.List(ctx)
}

// ListUpcoming returns future sessions that are not cancelled.
func (s *Service) ListUpcoming(ctx context.Context) ([]Session, error) {
	return s.repo.ListUpcoming(ctx)
}

// ListToday returns sessions scheduled today.
func (s *Service) ListToday(ctx context.Context) ([]Session, error) {
	return s.repo.ListToday(ctx)
}

// ListByUser returns sessions the user is assigned to.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Session, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get fetches one session with its assignments.
func (s *Service) Get(ctx context.Context, id int64) (Session, error) {
	return s.repo.GetByID(ctx, id)
}

// Create schedules a session under an existing training.
func (s *Service) Create(ctx context.Context, input NewSession) (Session, error) {
	if err := s.validate(ctx, &input); err != nil {
		return Session{}, err
	}
	return s.repo.Create(ctx, input)
}

// Update patches a session, revalidating its training reference.
func (s *Service) Update(ctx context.Context, id int64, input NewSession) (Session, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return Session{}, err
	}
	if err := s.validate(ctx, &input); err != nil {
		return Session{}, err
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AddAssignees attaches users to the session in per-session roles.
func (s *Service) AddAssignees(ctx context.Context, sessionID int64, assignees []AssigneeInput) error {
	if len(assignees) == 0 {
		return errors.New("session: no assignees supplied")
	}
	if _, err := s.repo.GetByID(ctx, sessionID); err != nil {
		return err
	}
	return s.repo.AddAssignees(ctx, sessionID, assignees)
}

// RemoveAssignees detaches users from the session.
func (s *Service) RemoveAssignees(ctx context.Context, sessionID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return errors.New("session: no assignees supplied")
	}
	if _, err := s.repo.GetByID(ctx, sessionID); err != nil {
		return err
	}
	return s.repo.RemoveAssignees(ctx, sessionID, userIDs)
}

// FindSessionByID adapts the repository to the authorization lookup
// contract: owning training plus assignments as role grants.
func (s *Service) FindSessionByID(ctx context.Context, id int64) (*authz.SessionRecord, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	record := &authz.SessionRecord{
		ID:          sess.ID,
		TrainingID:  sess.TrainingID,
		Assignments: make([]authz.RoleGrant, 0, len(sess.Assignments)),
	}
	for _, a := range sess.Assignments {
		record.Assignments = append(record.Assignments, authz.RoleGrant{UserID: a.UserID, Role: a.Role})
	}
	return record, nil
}

func (s *Service) validate(ctx context.Context, input *NewSession) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return errors.New("session: title required")
	}
	if input.Status == "" {
		input.Status = StatusScheduled
	}
	if _, err := s.trainings.FindTrainingByID(ctx, input.TrainingID); err != nil {
		return err
	}
	return nil
}

var _ authz.SessionReader = (*Service)(nil)
