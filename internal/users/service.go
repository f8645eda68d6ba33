package users

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/praxis-hq/praxis/internal/authz"
)

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// ListAdmins returns all global administrators.
func (s *Service) ListAdmins(ctx context.Context) ([]User, error) {
	return s.repo.ListAdmins(ctx)
}

// Get fetches one user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register creates an account with a hashed password.
func (s *Service) Register(ctx context.Context, input NewUser) (User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, input, string(hash))
}

// Update patches profile fields.
func (s *Service) Update(ctx context.Context, id int64, update UserUpdate) (User, error) {
	update.Name = strings.TrimSpace(update.Name)
	update.Email = strings.TrimSpace(strings.ToLower(update.Email))
	return s.repo.Update(ctx, id, update)
}

// SetAdmin flips the global admin flag.
func (s *Service) SetAdmin(ctx context.Context, id int64, isAdmin bool) (User, error) {
	return s.repo.SetAdmin(ctx, id, isAdmin)
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// FindUserByID adapts the repository to the authorization lookup contract.
func (s *Service) FindUserByID(ctx context.Context, id int64) (*authz.UserRecord, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &authz.UserRecord{ID: user.ID, IsAdmin: user.IsAdmin}, nil
}

var _ authz.UserReader = (*Service)(nil)
