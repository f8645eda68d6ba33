package analytics

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/praxis-hq/praxis/internal/authz"
	"github.com/praxis-hq/praxis/internal/shared"
)

// Handler exposes analytics endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz}
}

// MountRoutes registers analytics routes. A user may read their own
// numbers; program analytics are for global admins.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.Require(authz.RoleAdmin, authz.RoleOwn)).Get("/users/{userID}", h.forUser)
	r.With(h.authz.Require(authz.RoleAdmin)).Get("/programs/{trainingID}", h.forProgram)
}

func (h *Handler) forUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	out, err := h.service.ForUser(r.Context(), id)
	if err != nil {
		h.fail(w, "user analytics", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) forProgram(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "trainingID"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	out, err := h.service.ForProgram(r.Context(), id)
	if err != nil {
		h.fail(w, "program analytics", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		shared.RespondError(w, http.StatusNotFound, shared.UserSafeMessage(err))
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
}
