package training

import (
	"time"

	"github.com/praxis-hq/praxis/internal/authz"
)

// Training is a multi-session program with a date range and a member roster.
type Training struct {
	ID          int64
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Members     []Membership
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership scopes a user's standing within the training as a whole,
// independent of any specific session.
type Membership struct {
	UserID   int64
	UserName string
	Role     authz.Role
}

// NewTraining carries fields required to create a program.
type NewTraining struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// MemberInput identifies a user/role pair for roster changes. The role
// arrives as a free-form string and is canonicalised at the storage boundary.
type MemberInput struct {
	UserID int64
	Role   string
}
