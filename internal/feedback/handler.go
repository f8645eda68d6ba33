package feedback

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

// Handler manages feedback endpoints, nested under the owning session.
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

// MountRoutes registers feedback routes. Anyone assigned to the session may
// leave feedback; reading the full list is for the training staff.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.With(h.authz.Require(authz.RoleCandidate, authz.RoleTrainer, authz.RoleModerator)).
			Post("/", h.submit)
		r.With(h.authz.Require(authz.RoleTrainingAdmin, authz.RoleTrainer, authz.RoleModerator)).
			Get("/", h.listBySession)
		r.With(h.authz.Require(authz.RoleTrainingAdmin, authz.RoleTrainer, authz.RoleModerator)).
			Get("/summary", h.summary)
	})
}

type feedbackRequest struct {
	ToUserID int64  `json:"toUserId" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment"`
}

type feedbackView struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"sessionId"`
	FromUserID int64     `json:"fromUserId"`
	ToUserID   int64     `json:"toUserId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

type summaryView struct {
	SessionID int64   `json:"sessionId"`
	Count     int     `json:"count"`
	MeanScore float64 `json:"meanScore"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	ident := shared.IdentityFromContext(r.Context())
	if ident == nil {
		shared.RespondError(w, http.StatusUnauthorized, shared.UserSafeMessage(shared.ErrUnauthenticated))
		return
	}
	var req feedbackRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid feedback payload")
		return
	}
	fb, err := h.service.Submit(r.Context(), NewFeedback{
		SessionID:  sessionID,
		FromUserID: ident.UserID,
		ToUserID:   req.ToUserID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		h.fail(w, "submit feedback", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, toFeedbackView(fb))
}

func (h *Handler) listBySession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	list, err := h.service.ListBySession(r.Context(), sessionID)
	if err != nil {
		h.fail(w, "list feedback", err)
		return
	}
	out := make([]feedbackView, len(list))
	for i, fb := range list {
		out[i] = toFeedbackView(fb)
	}
	shared.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "sessionID")
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	summary, err := h.service.Summarize(r.Context(), sessionID)
	if err != nil {
		h.fail(w, "summarize feedback", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, summaryView{SessionID: summary.SessionID, Count: summary.Count, MeanScore: summary.MeanScore})
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

func toFeedbackView(fb Feedback) feedbackView {
	return feedbackView{
		ID:         fb.ID,
		SessionID:  fb.SessionID,
		FromUserID: fb.FromUserID,
		ToUserID:   fb.ToUserID,
		Rating:     fb.Rating,
		Comment:    fb.Comment,
		CreatedAt:  fb.CreatedAt,
	}
}
