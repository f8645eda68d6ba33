package session

import (
	"context"
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

// Handler manages session endpoints.
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

// MountRoutes registers session routes. Creation and the global listings
// are global-admin only; per-session reads admit any role scoped to that
// session; mutations of a specific session require the training admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.RoleAdmin))
		r.Get("/", h.list)
		r.Get("/upcoming", h.listUpcoming)
		r.Get("/today", h.listToday)
		r.Post("/", h.create)
	})
	r.With(h.authz.Require(authz.RoleAdmin, authz.RoleModerator, authz.RoleCandidate, authz.RoleTrainer)).
		Get("/{sessionID}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.RoleTrainingAdmin))
		r.Patch("/{sessionID}", h.update)
		r.Delete("/{sessionID}", h.remove)
		r.Post("/{sessionID}/roles", h.addAssignees)
		r.Delete("/{sessionID}/roles", h.removeAssignees)
	})
	r.With(h.authz.Require(authz.RoleOwn)).Get("/user/{userID}", h.listByUser)
}

type sessionPayload struct {
	TrainingID  int64  `json:"trainingId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	Status      string `json:"status"`
}

type assignmentView struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName"`
	Role     string `json:"role"`
}

type sessionView struct {
	ID          int64            `json:"id"`
	TrainingID  int64            `json:"trainingId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
	StartTime   string           `json:"startTime"`
	EndTime     string           `json:"endTime"`
	Status      string           `json:"status"`
	Assignments []assignmentView `json:"assignments"`
}

type assigneesRequest struct {
	Users []struct {
		UserID int64  `json:"userId" validate:"required"`
		Role   string `json:"role" validate:"required"`
	} `json:"users" validate:"required,min=1,dive"`
}

type removeAssigneesRequest struct {
	UserIDs []int64 `json:"userIds" validate:"required,min=1"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.service.List)
}

func (h *Handler) listUpcoming(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.service.ListUpcoming)
}

func (h *Handler) listToday(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.service.ListToday)
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	list, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.fail(w, "list sessions by user", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toSessionViews(list))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	sess, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get session", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toSessionView(sess))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	sess, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.fail(w, "create session", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, toSessionView(sess))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	input, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	sess, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.fail(w, "update session", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toSessionView(sess))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete session", err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) addAssignees(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	var req assigneesRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid assignees payload")
		return
	}
	assignees := make([]AssigneeInput, len(req.Users))
	for i, u := range req.Users {
		assignees[i] = AssigneeInput{UserID: u.UserID, Role: u.Role}
	}
	if err := h.service.AddAssignees(r.Context(), id, assignees); err != nil {
		h.fail(w, "add session assignees", err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) removeAssignees(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	var req removeAssigneesRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid assignees payload")
		return
	}
	if err := h.service.RemoveAssignees(r.Context(), id, req.UserIDs); err != nil {
		h.fail(w, "remove session assignees", err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, fetch func(context.Context) ([]Session, error)) {
	list, err := fetch(r.Context())
	if err != nil {
		h.fail(w, "list sessions", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toSessionViews(list))
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (NewSession, bool) {
	var req sessionPayload
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return NewSession{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid session payload")
		return NewSession{}, false
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	return NewSession{
		TrainingID:  req.TrainingID,
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      ParseStatus(req.Status),
	}, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		shared.RespondError(w, http.StatusNotFound, shared.UserSafeMessage(err))
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toSessionView(sess Session) sessionView {
	assignments := make([]assignmentView, len(sess.Assignments))
	for i, a := range sess.Assignments {
		assignments[i] = assignmentView{UserID: a.UserID, UserName: a.UserName, Role: a.Role.String()}
	}
	return sessionView{
		ID:          sess.ID,
		TrainingID:  sess.TrainingID,
		Title:       sess.Title,
		Description: sess.Description,
		Date:        sess.Date.Format("2006-01-02"),
		StartTime:   sess.StartTime,
		EndTime:     sess.EndTime,
		Status:      string(sess.Status),
		Assignments: assignments,
	}
}

func toSessionViews(list []Session) []sessionView {
	out := make([]sessionView, len(list))
	for i, sess := range list {
		out[i] = toSessionView(sess)
	}
	return out
}
