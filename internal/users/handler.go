package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/praxis-hq/praxis/internal/authz"
	"github.com/praxis-hq/praxis/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz, validator: validator.New()}
}

// MountRoutes registers user routes. Registration is public; profile
// updates are limited to the account owner or a global admin; admin-flag
// changes and deletion require a global admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.Require(authz.RolePublic)).Post("/", h.create)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuthenticated())
		r.Get("/", h.list)
		r.Get("/admins", h.listAdmins)
		r.Get("/{userID}", h.get)
	})
	r.With(h.authz.Require(authz.RoleAdmin, authz.RoleOwn)).Patch("/{userID}", h.update)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.RoleAdmin))
		r.Patch("/{userID}/admin", h.setAdmin)
		r.Delete("/{userID}", h.remove)
	})
}

type userView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type updateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type setAdminRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "list users", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toViews(list))
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAdmins(r.Context())
	if err != nil {
		h.fail(w, "list admins", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toViews(list))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "userID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get user", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toView(user))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid user payload")
		return
	}
	user, err := h.service.Register(r.Context(), NewUser{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, "create user", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, toView(user))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "userID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req updateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid user payload")
		return
	}
	user, err := h.service.Update(r.Context(), id, UserUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		h.fail(w, "update user", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toView(user))
}

func (h *Handler) setAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "userID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req setAdminRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.service.SetAdmin(r.Context(), id, req.IsAdmin)
	if err != nil {
		h.fail(w, "set admin flag", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toView(user))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "userID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete user", err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		shared.RespondError(w, http.StatusNotFound, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrConflict):
		shared.RespondError(w, http.StatusConflict, shared.UserSafeMessage(err))
	default:
		h.logger.Error(op, slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toView(user User) userView {
	return userView{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toViews(list []User) []userView {
	out := make([]userView, len(list))
	for i, user := range list {
		out[i] = toView(user)
	}
	return out
}
