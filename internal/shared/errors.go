package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates the request carried no verified identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the caller holds no sufficient role.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness violation on create.
	ErrConflict = errors.New("already exists")
)

// UserSafeMessage maps internal errors to messages safe to return to
// clients. Anything unrecognised collapses to a generic message so lookup
// internals never leak.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "resource not found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid credentials"
	case errors.Is(err, ErrUnauthenticated):
		return "authentication required"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "resource already exists"
	default:
		return "internal error"
	}
}
