package authz

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/praxis-hq/praxis/internal/shared"
)

// Middleware turns per-route role allow-lists into access decisions.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Require builds a middleware that admits the request when the caller
// satisfies any of the allowed roles.
//
// Decision order: PUBLIC admits before identity is even consulted, so
// public routes never pay a storage round-trip. Then the identity must
// exist (401 otherwise). ADMIN admits any global admin. OWN, when declared,
// is exclusive: it resolves directly against the target user id and the
// scoped scan below never runs. Otherwise the scoped roles are evaluated
// sequentially in the fixed order training_admin, moderator, trainer,
// candidate — first match wins.
func (m Middleware) Require(allowed ...Role) func(http.Handler) http.Handler {
	declared := make(map[Role]struct{}, len(allowed))
	for _, role := range allowed {
		declared[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := declared[RolePublic]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ident := shared.IdentityFromContext(r.Context())
			if ident == nil {
				shared.RespondError(w, http.StatusUnauthorized, shared.UserSafeMessage(shared.ErrUnauthenticated))
				return
			}

			if _, ok := declared[RoleAdmin]; ok && ident.IsAdmin {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := declared[RoleOwn]; ok {
				targetID := targetUserID(r)
				if m.Service.IsOwner(ident.UserID, targetID) {
					next.ServeHTTP(w, r)
					return
				}
				shared.RespondError(w, http.StatusForbidden, shared.UserSafeMessage(shared.ErrForbidden))
				return
			}

			sessionID, hasSession := sessionIDFromRequest(r)
			if hasSession {
				for _, role := range scanOrder {
					if _, ok := declared[role]; !ok {
						continue
					}
					granted, err := m.evaluate(r, role, ident.UserID, sessionID)
					if err != nil {
						if m.Logger != nil {
							m.Logger.Error("authorization lookup failed",
								slog.String("role", role.String()),
								slog.Int64("user_id", ident.UserID),
								slog.Int64("session_id", sessionID),
								slog.Any("error", err))
						}
						shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
						return
					}
					if granted {
						next.ServeHTTP(w, r)
						return
					}
					if m.Logger != nil {
						m.Logger.Warn("authorization denied",
							slog.String("role", role.String()),
							slog.Int64("user_id", ident.UserID),
							slog.Int64("session_id", sessionID))
					}
				}
			}

			shared.RespondError(w, http.StatusForbidden, shared.UserSafeMessage(shared.ErrForbidden))
		})
	}
}

// RequireAuthenticated admits any request with a verified identity,
// without role checks. Used for routes every signed-in user may reach.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shared.IdentityFromContext(r.Context()) == nil {
				shared.RespondError(w, http.StatusUnauthorized, shared.UserSafeMessage(shared.ErrUnauthenticated))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) evaluate(r *http.Request, role Role, userID, sessionID int64) (bool, error) {
	ctx := r.Context()
	switch role {
	case RoleTrainingAdmin:
		return m.Service.IsTrainingAdmin(ctx, userID, sessionID)
	case RoleModerator:
		return m.Service.IsModerator(ctx, userID, sessionID)
	case RoleTrainer:
		return m.Service.IsTrainer(ctx, userID, sessionID)
	case RoleCandidate:
		return m.Service.IsCandidate(ctx, userID, sessionID)
	default:
		return false, nil
	}
}

// sessionIDFromRequest parses the numeric sessionID route parameter.
// Routes without a session scope simply skip the scoped scan.
func sessionIDFromRequest(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "sessionID")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// targetUserID resolves the subject of an OWN check: the userID route
// parameter when present, otherwise an id field in the request body. The
// body is restored so the downstream handler can read it again.
func targetUserID(r *http.Request) int64 {
	if raw := chi.URLParam(r, "userID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return id
		}
		return 0
	}
	if r.Body == nil {
		return 0
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return 0
	}
	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return 0
	}
	return body.ID
}
