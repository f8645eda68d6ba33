package authz

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hq/praxis/internal/shared"
)

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func newTestMiddleware() Middleware {
	return Middleware{
		Service: newFixtureService(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// serve mounts the guarded handler on a chi router so URL parameters
// resolve the same way they do in production routes.
func serve(mw Middleware, pattern, target string, ident *shared.Identity, body io.Reader, allowed ...Role) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.With(mw.Require(allowed...)).Post(pattern, okHandler())

	req := httptest.NewRequest(http.MethodPost, target, body)
	if ident != nil {
		req = req.WithContext(shared.ContextWithIdentity(req.Context(), ident))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPublicAdmitsWithoutIdentity(t *testing.T) {
	mw := newTestMiddleware()
	rec := serve(mw, "/things", "/things", nil, nil, RolePublic)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingIdentityIsUnauthorized(t *testing.T) {
	mw := newTestMiddleware()
	rec := serve(mw, "/things", "/things", nil, nil, RoleAdmin)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminShortcut(t *testing.T) {
	mw := newTestMiddleware()

	rec := serve(mw, "/things", "/things", &shared.Identity{UserID: 1, IsAdmin: true}, nil, RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(mw, "/things", "/things", &shared.Identity{UserID: 2}, nil, RoleAdmin)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOwnMatchesRouteParameter(t *testing.T) {
	mw := newTestMiddleware()

	rec := serve(mw, "/users/{userID}", "/users/5", &shared.Identity{UserID: 5}, nil, RoleOwn)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(mw, "/users/{userID}", "/users/6", &shared.Identity{UserID: 5}, nil, RoleOwn)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOwnFallsBackToBodyID(t *testing.T) {
	mw := newTestMiddleware()

	body := strings.NewReader(`{"id": 5, "name": "x"}`)
	rec := serve(mw, "/profile", "/profile", &shared.Identity{UserID: 5}, body, RoleOwn)
	require.Equal(t, http.StatusOK, rec.Code)
	// The guarded handler must still see the request body.
	require.Equal(t, "ok", rec.Body.String())

	body = strings.NewReader(`{"id": 6}`)
	rec = serve(mw, "/profile", "/profile", &shared.Identity{UserID: 5}, body, RoleOwn)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOwnIsExclusive(t *testing.T) {
	mw := newTestMiddleware()

	// User 2 is a trainer in session 10, but OWN short-circuits the
	// scoped scan, so the trainer grant never rescues the request.
	rec := serve(mw, "/sessions/{sessionID}/users/{userID}", "/sessions/10/users/9",
		&shared.Identity{UserID: 2}, nil, RoleOwn, RoleTrainer)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestScopedScanFirstMatchWins(t *testing.T) {
	users := &memoryUsers{users: map[int64]*UserRecord{2: {ID: 2}}}
	calls := []string{}
	sessions := &countingSessions{
		inner: &memorySessions{sessions: map[int64]*SessionRecord{
			10: {ID: 10, TrainingID: 100, Assignments: []RoleGrant{
				{UserID: 2, Role: RoleModerator},
				{UserID: 2, Role: RoleTrainer},
			}},
		}},
		calls: &calls,
	}
	mw := Middleware{
		Service: NewService(users, sessions, &memoryTrainings{}),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Both TRAINER and MODERATOR are declared; the fixed scan order
	// evaluates moderator first, matches, and stops.
	rec := serve(mw, "/sessions/{sessionID}", "/sessions/10",
		&shared.Identity{UserID: 2}, nil, RoleTrainer, RoleModerator)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, calls, 1)
}

func TestScopedRolesSkippedWithoutSessionScope(t *testing.T) {
	mw := newTestMiddleware()

	// User 2 is a trainer in session 10, but the route carries no
	// session id, so the trainer declaration cannot be evaluated.
	rec := serve(mw, "/things", "/things", &shared.Identity{UserID: 2}, nil, RoleTrainer)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnknownSessionDeniesInsteadOfCrashing(t *testing.T) {
	mw := newTestMiddleware()

	rec := serve(mw, "/sessions/{sessionID}", "/sessions/999",
		&shared.Identity{UserID: 2}, nil, RoleTrainer, RoleCandidate)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStorageErrorSurfacesAsServerError(t *testing.T) {
	mw := Middleware{
		Service: NewService(
			&memoryUsers{users: map[int64]*UserRecord{}},
			&memorySessions{err: errors.New("connection reset")},
			&memoryTrainings{},
		),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	rec := serve(mw, "/sessions/{sessionID}", "/sessions/10",
		&shared.Identity{UserID: 2}, nil, RoleTrainer)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAuthenticated(t *testing.T) {
	mw := newTestMiddleware()

	r := chi.NewRouter()
	r.With(mw.RequireAuthenticated()).Get("/things", okHandler())

	req := httptest.NewRequest(http.MethodGet, "/things", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/things", nil)
	req = req.WithContext(shared.ContextWithIdentity(req.Context(), &shared.Identity{UserID: 3}))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

type countingSessions struct {
	inner *memorySessions
	calls *[]string
}

func (c *countingSessions) FindSessionByID(ctx context.Context, id int64) (*SessionRecord, error) {
	*c.calls = append(*c.calls, "find")
	return c.inner.FindSessionByID(ctx, id)
}
