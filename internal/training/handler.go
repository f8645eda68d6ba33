package training

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

// Handler manages training program endpoints.
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

// MountRoutes registers training routes. Program and roster mutations are
// restricted to global admins; reads are open to any signed-in user.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuthenticated())
		r.Get("/", h.list)
		r.Get("/{trainingID}", h.get)
	})
	r.With(h.authz.Require(authz.RoleOwn)).Get("/user/{userID}", h.listByUser)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.RoleAdmin))
		r.Post("/", h.create)
		r.Patch("/{trainingID}", h.update)
		r.Delete("/{trainingID}", h.remove)
		r.Post("/{trainingID}/members", h.addMembers)
		r.Delete("/{trainingID}/members", h.removeMembers)
	})
}

type trainingPayload struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

type memberView struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName"`
	Role     string `json:"role"`
}

type trainingView struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	Members     []memberView `json:"members"`
}

type membersRequest struct {
	Members []struct {
		UserID int64  `json:"userId" validate:"required"`
		Role   string `json:"role" validate:"required"`
	} `json:"members" validate:"required,min=1,dive"`
}

type removeMembersRequest struct {
	UserIDs []int64 `json:"userIds" validate:"required,min=1"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "list trainings", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toTrainingViews(list))
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	list, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.fail(w, "list trainings by user", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toTrainingViews(list))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "trainingID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	tr, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get training", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toTrainingView(tr))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	tr, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.fail(w, "create training", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, toTrainingView(tr))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "trainingID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	input, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	tr, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.fail(w, "update training", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toTrainingView(tr))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "trainingID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete training", err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) addMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "trainingID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	var req membersRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid members payload")
		return
	}
	members := make([]MemberInput, len(req.Members))
	for i, m := range req.Members {
		members[i] = MemberInput{UserID: m.UserID, Role: m.Role}
	}
	if err := h.service.AddMembers(r.Context(), id, members); err != nil {
		h.fail(w, "add training members", err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) removeMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "trainingID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	var req removeMembersRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid members payload")
		return
	}
	if err := h.service.RemoveMembers(r.Context(), id, req.UserIDs); err != nil {
		h.fail(w, "remove training members", err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (NewTraining, bool) {
	var req trainingPayload
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return NewTraining{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid training payload")
		return NewTraining{}, false
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	return NewTraining{Title: req.Title, Description: req.Description, StartDate: start, EndDate: end}, true
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

func toTrainingView(tr Training) trainingView {
	members := make([]memberView, len(tr.Members))
	for i, m := range tr.Members {
		members[i] = memberView{UserID: m.UserID, UserName: m.UserName, Role: m.Role.String()}
	}
	return trainingView{
		ID:          tr.ID,
		Title:       tr.Title,
		Description: tr.Description,
		StartDate:   tr.StartDate.Format("2006-01-02"),
		EndDate:     tr.EndDate.Format("2006-01-02"),
		Members:     members,
	}
}

func toTrainingViews(list []Training) []trainingView {
	out := make([]trainingView, len(list))
	for i, tr := range list {
		out[i] = toTrainingView(tr)
	}
	return out
}
