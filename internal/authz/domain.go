package authz

import "strings"

// Role is the closed set of abstract roles a route may declare.
type Role int

const (
	RoleUnknown Role = iota
	// RolePublic marks a route reachable without any identity.
	RolePublic
	// RoleAdmin is the global administrator flag on the user account.
	RoleAdmin
	// RoleTrainingAdmin scopes to the training that owns the session.
	RoleTrainingAdmin
	// RoleTrainer scopes to a per-session assignment.
	RoleTrainer
	// RoleModerator scopes to a per-session assignment.
	RoleModerator
	// RoleCandidate scopes to a per-session assignment.
	RoleCandidate
	// RoleOwn requires the caller to be the subject of the targeted resource.
	RoleOwn
)

// scanOrder fixes the evaluation order of the scoped-role scan. The first
// declared role that matches wins; later predicates are not evaluated.
var scanOrder = []Role{RoleTrainingAdmin, RoleModerator, RoleTrainer, RoleCandidate}

// ParseRole canonicalises a stored role string. Stored records are free-form
// strings; parsing happens once at the data-access boundary so every internal
// comparison is enum-to-enum.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return RolePublic
	case "admin":
		return RoleAdmin
	case "training_admin":
		return RoleTrainingAdmin
	case "trainer":
		return RoleTrainer
	case "moderator":
		return RoleModerator
	case "candidate":
		return RoleCandidate
	case "own":
		return RoleOwn
	default:
		return RoleUnknown
	}
}

// String returns the canonical lowercase name of the role.
func (r Role) String() string {
	switch r {
	case RolePublic:
		return "public"
	case RoleAdmin:
		return "admin"
	case RoleTrainingAdmin:
		return "training_admin"
	case RoleTrainer:
		return "trainer"
	case RoleModerator:
		return "moderator"
	case RoleCandidate:
		return "candidate"
	case RoleOwn:
		return "own"
	default:
		return "unknown"
	}
}

// UserRecord is the minimal user shape the predicate engine needs.
type UserRecord struct {
	ID      int64
	IsAdmin bool
}

// RoleGrant ties a user to a role within a training or session.
type RoleGrant struct {
	UserID int64
	Role   Role
}

// SessionRecord is the minimal session shape: its owning training and the
// per-session role assignments.
type SessionRecord struct {
	ID          int64
	TrainingID  int64
	Assignments []RoleGrant
}

// TrainingRecord is the minimal training shape: its membership roster.
type TrainingRecord struct {
	ID          int64
	Memberships []RoleGrant
}
