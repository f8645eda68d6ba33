package session

import (
	"strings"
	"time"

	"github.com/praxis-hq/praxis/internal/authz"
)

// Status tracks a session through its lifecycle.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus canonicalises a stored status string.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in_progress":
		return StatusInProgress
	case "completed":
		return StatusCompleted
	case "cancelled":
		return StatusCancelled
	default:
		return StatusScheduled
	}
}

// Session is a single scheduled meeting belonging to one training.
type Session struct {
	ID          int64
	TrainingID  int64
	Title       string
	Description string
	Date        time.Time
	StartTime   string
	EndTime     string
	Status      Status
	Assignments []Assignment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Assignment scopes a user's role within this specific session, distinct
// from their training-level membership.
type Assignment struct {
	UserID   int64
	UserName string
	Role     authz.Role
}

// NewSession carries fields required to schedule a session.
type NewSession struct {
	TrainingID  int64
	Title       string
	Description string
	Date        time.Time
	StartTime   string
	EndTime     string
	Status      Status
}

// AssigneeInput identifies a user/role pair for session role changes.
type AssigneeInput struct {
	UserID int64
	Role   string
}
