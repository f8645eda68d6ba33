package assignment

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

// Handler manages assignment endpoints. All scoped routes are nested under
// the owning session so the authorization middleware can resolve the
// session scope from the path.
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

// MountRoutes registers assignment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.Require(authz.RoleAdmin)).Get("/", h.listAll)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.With(h.authz.Require(authz.RoleTrainingAdmin, authz.RoleTrainer)).Post("/", h.create)
		r.With(h.authz.Require(authz.RoleTrainingAdmin, authz.RoleTrainer, authz.RoleModerator, authz.RoleCandidate)).
			Get("/", h.listBySession)
		r.Route("/{assignmentID}", func(r chi.Router) {
			r.With(h.authz.Require(authz.RoleTrainingAdmin, authz.RoleTrainer, authz.RoleModerator, authz.RoleCandidate)).
				Get("/", h.get)
			r.With(h.authz.Require(authz.RoleAdmin, authz.RoleTrainer)).Patch("/", h.update)
			r.With(h.authz.Require(authz.RoleAdmin, authz.RoleTrainer)).Delete("/", h.remove)
			r.With(h.authz.Require(authz.RoleCandidate)).Post("/submit", h.submit)
			r.With(h.authz.Require(authz.RoleTrainingAdmin, authz.RoleModerator, authz.RoleTrainer, authz.RoleCandidate)).
				Get("/submissions", h.listSubmissions)
		})
	})
}

type assignmentPayload struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	ReferenceURL string `json:"referenceUrl" validate:"omitempty,url"`
	DueDate      string `json:"dueDate" validate:"required,datetime=2006-01-02"`
}

type assignmentView struct {
	ID           int64  `json:"id"`
	SessionID    int64  `json:"sessionId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ReferenceURL string `json:"referenceUrl"`
	DueDate      string `json:"dueDate"`
}

type submitRequest struct {
	SubmissionURL string `json:"submissionUrl" validate:"required,url"`
	Note          string `json:"note"`
}

type submissionView struct {
	ID            int64     `json:"id"`
	AssignmentID  int64     `json:"assignmentId"`
	UserID        int64     `json:"userId"`
	UserName      string    `json:"userName,omitempty"`
	SubmissionURL string    `json:"submissionUrl"`
	Note          string    `json:"note"`
	CompletedOn   time.Time `json:"completedOn"`
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAll(r.Context())
	if err != nil {
		h.fail(w, "list assignments", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toAssignmentViews(list))
}

func (h *Handler) listBySession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	list, err := h.service.ListBySession(r.Context(), sessionID)
	if err != nil {
		h.fail(w, "list session assignments", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toAssignmentViews(list))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sessionID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	a, err := h.service.Get(r.Context(), sessionID, id)
	if err != nil {
		h.fail(w, "get assignment", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toAssignmentView(a))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	input, ok := h.decodePayload(w, r, sessionID)
	if !ok {
		return
	}
	a, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.fail(w, "create assignment", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, toAssignmentView(a))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	sessionID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	input, ok := h.decodePayload(w, r, sessionID)
	if !ok {
		return
	}
	a, err := h.service.Update(r.Context(), sessionID, id, input)
	if err != nil {
		h.fail(w, "update assignment", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toAssignmentView(a))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	sessionID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), sessionID, id); err != nil {
		h.fail(w, "delete assignment", err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	sessionID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	ident := shared.IdentityFromContext(r.Context())
	if ident == nil {
		shared.RespondError(w, http.StatusUnauthorized, shared.UserSafeMessage(shared.ErrUnauthenticated))
		return
	}
	var req submitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid submission payload")
		return
	}
	sub, err := h.service.Submit(r.Context(), sessionID, NewSubmission{
		AssignmentID:  id,
		UserID:        ident.UserID,
		SubmissionURL: req.SubmissionURL,
		Note:          req.Note,
	})
	if err != nil {
		h.fail(w, "submit assignment", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, toSubmissionView(sub))
}

func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	sessionID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListSubmissions(r.Context(), sessionID, id)
	if err != nil {
		h.fail(w, "list submissions", err)
		return
	}
	out := make([]submissionView, len(list))
	for i, sub := range list {
		out[i] = toSubmissionView(sub)
	}
	shared.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, sessionID int64) (NewAssignment, bool) {
	var req assignmentPayload
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return NewAssignment{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid assignment payload")
		return NewAssignment{}, false
	}
	due, _ := time.Parse("2006-01-02", req.DueDate)
	return NewAssignment{
		SessionID:    sessionID,
		Title:        req.Title,
		Description:  req.Description,
		ReferenceURL: req.ReferenceURL,
		DueDate:      due,
	}, true
}

func (h *Handler) pathIDs(w http.ResponseWriter, r *http.Request) (sessionID, assignmentID int64, ok bool) {
	sessionID, ok = pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return 0, 0, false
	}
	assignmentID, ok = pathID(r, "assignmentID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid assignment id")
		return 0, 0, false
	}
	return sessionID, assignmentID, true
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

func toAssignmentView(a Assignment) assignmentView {
	return assignmentView{
		ID:           a.ID,
		SessionID:    a.SessionID,
		Title:        a.Title,
		Description:  a.Description,
		ReferenceURL: a.ReferenceURL,
		DueDate:      a.DueDate.Format("2006-01-02"),
	}
}

func toAssignmentViews(list []Assignment) []assignmentView {
	out := make([]assignmentView, len(list))
	for i, a := range list {
		out[i] = toAssignmentView(a)
	}
	return out
}

func toSubmissionView(sub Submission) submissionView {
	return submissionView{
		ID:            sub.ID,
		AssignmentID:  sub.AssignmentID,
		UserID:        sub.UserID,
		UserName:      sub.UserName,
		SubmissionURL: sub.SubmissionURL,
		Note:          sub.Note,
		CompletedOn:   sub.CompletedOn,
	}
}
