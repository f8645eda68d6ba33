package authz

import (
	"context"
	"errors"

	"github.com/praxis-hq/praxis/internal/shared"
)

// UserReader resolves the minimal user shape for role checks.
type UserReader interface {
	FindUserByID(ctx context.Context, id int64) (*UserRecord, error)
}

// SessionReader resolves a session with its per-session role assignments.
type SessionReader interface {
	FindSessionByID(ctx context.Context, id int64) (*SessionRecord, error)
}

// TrainingReader resolves a training with its membership roster.
type TrainingReader interface {
	FindTrainingByID(ctx context.Context, id int64) (*TrainingRecord, error)
}

// Service evaluates role predicates against the Training → Session →
// assignment graph. Every check re-derives from current storage state; no
// decision is cached across requests.
type Service struct {
	users     UserReader
	sessions  SessionReader
	trainings TrainingReader
}

// NewService constructs the predicate engine with its lookup collaborators.
func NewService(users UserReader, sessions SessionReader, trainings TrainingReader) *Service {
	return &Service{users: users, sessions: sessions, trainings: trainings}
}

// IsGlobalAdmin reports whether the user carries the global admin flag.
func (s *Service) IsGlobalAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return false, swallowNotFound(err)
	}
	return user != nil && user.IsAdmin, nil
}

// IsTrainingAdmin reports whether the user administers the training that
// owns the session. The user must carry the global admin flag and hold an
// admin membership in the training; this conjunction mirrors how training
// administrators are provisioned.
func (s *Service) IsTrainingAdmin(ctx context.Context, userID, sessionID int64) (bool, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return false, swallowNotFound(err)
	}
	if user == nil || !user.IsAdmin {
		return false, nil
	}
	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return false, swallowNotFound(err)
	}
	if session == nil {
		return false, nil
	}
	training, err := s.trainings.FindTrainingByID(ctx, session.TrainingID)
	if err != nil {
		return false, swallowNotFound(err)
	}
	if training == nil {
		return false, nil
	}
	for _, m := range training.Memberships {
		if m.UserID == userID && m.Role == RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

// IsTrainer reports whether the user holds a trainer assignment in the session.
func (s *Service) IsTrainer(ctx context.Context, userID, sessionID int64) (bool, error) {
	return s.hasSessionRole(ctx, userID, sessionID, RoleTrainer)
}

// IsModerator reports whether the user holds a moderator assignment in the session.
func (s *Service) IsModerator(ctx context.Context, userID, sessionID int64) (bool, error) {
	return s.hasSessionRole(ctx, userID, sessionID, RoleModerator)
}

// IsCandidate reports whether the user holds a candidate assignment in the session.
func (s *Service) IsCandidate(ctx context.Context, userID, sessionID int64) (bool, error) {
	return s.hasSessionRole(ctx, userID, sessionID, RoleCandidate)
}

// IsOwner reports whether the caller is the subject of the targeted
// resource. It never consults storage.
func (s *Service) IsOwner(userID, targetUserID int64) bool {
	return userID != 0 && targetUserID != 0 && userID == targetUserID
}

func (s *Service) hasSessionRole(ctx context.Context, userID, sessionID int64, role Role) (bool, error) {
	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return false, swallowNotFound(err)
	}
	if session == nil {
		return false, nil
	}
	for _, a := range session.Assignments {
		if a.UserID == userID && a.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// swallowNotFound folds missing-record lookups into a plain deny. A session
// or training id that resolves to nothing must read as "predicate false",
// never as an error crossing the decision boundary.
func swallowNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	return err
}
