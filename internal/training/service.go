package training

import (
	"context"
	"errors"
	"strings"

	"github.com/praxis-hq/praxis/internal/authz"
)

// Service handles training business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all trainings.
func (s *Service) List(ctx context.Context) ([]Training, error) {
	return s.repo.List(ctx)
}

// ListByUser returns trainings the user belongs to.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Training, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get fetches one training.
func (s *Service) Get(ctx context.Context, id int64) (Training, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new program.
func (s *Service) Create(ctx context.Context, input NewTraining) (Training, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Training{}, errors.New("training: title required")
	}
	if input.EndDate.Before(input.StartDate) {
		return Training{}, errors.New("training: end date precedes start date")
	}
	return s.repo.Create(ctx, input)
}

// Update patches an existing program.
func (s *Service) Update(ctx context.Context, id int64, input NewTraining) (Training, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Training{}, errors.New("training: title required")
	}
	if input.EndDate.Before(input.StartDate) {
		return Training{}, errors.New("training: end date precedes start date")
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes a program.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AddMembers adds or re-roles users on the training roster.
func (s *Service) AddMembers(ctx context.Context, trainingID int64, members []MemberInput) error {
	if len(members) == 0 {
		return errors.New("training: no members supplied")
	}
	if _, err := s.repo.GetByID(ctx, trainingID); err != nil {
		return err
	}
	return s.repo.AddMembers(ctx, trainingID, members)
}

// RemoveMembers drops users from the roster.
func (s *Service) RemoveMembers(ctx context.Context, trainingID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return errors.New("training: no members supplied")
	}
	if _, err := s.repo.GetByID(ctx, trainingID); err != nil {
		return err
	}
	return s.repo.RemoveMembers(ctx, trainingID, userIDs)
}

// FindTrainingByID adapts the repository to the authorization lookup
// contract: just the membership roster as role grants.
func (s *Service) FindTrainingByID(ctx context.Context, id int64) (*authz.TrainingRecord, error) {
	tr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	record := &authz.TrainingRecord{ID: tr.ID, Memberships: make([]authz.RoleGrant, 0, len(tr.Members))}
	for _, m := range tr.Members {
		record.Memberships = append(record.Memberships, authz.RoleGrant{UserID: m.UserID, Role: m.Role})
	}
	return record, nil
}

var _ authz.TrainingReader = (*Service)(nil)
