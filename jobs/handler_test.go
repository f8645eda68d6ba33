package jobs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hq/praxis/internal/authz"
	"github.com/praxis-hq/praxis/internal/shared"
)

func jobsHealthRequest(t *testing.T, ident *shared.Identity) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(nil, testLogger(), authz.Middleware{Logger: testLogger()})
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)

	req := httptest.NewRequest(http.MethodGet, "/jobs/health", nil)
	if ident != nil {
		req = req.WithContext(shared.ContextWithIdentity(req.Context(), ident))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJobsHealthRequiresAdmin(t *testing.T) {
	rec := jobsHealthRequest(t, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = jobsHealthRequest(t, &shared.Identity{UserID: 3})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJobsHealthAdminSeesQueueDepth(t *testing.T) {
	rec := jobsHealthRequest(t, &shared.Identity{UserID: 1, IsAdmin: true})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())
}
