// Package handler is the thin HTTP layer over registration sessions. It
// delegates to the session manager and pipeline without embedding business
// logic so transport concerns remain isolated.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"onboard/internal/platform/middleware"
	"onboard/internal/registration/models"
	"onboard/internal/registration/password"
	"onboard/internal/registration/session"
	"onboard/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// Handler handles registration endpoints.
type Handler struct {
	logger   *slog.Logger
	sessions *session.Manager
}

// New creates a registration Handler.
func New(sessions *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		sessions: sessions,
	}
}

// Register mounts the registration routes on the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(reg chi.Router) {
		reg.Use(middleware.Recovery(h.logger))
		reg.Use(middleware.RequestID)
		reg.Use(middleware.Logger(h.logger))
		reg.Use(middleware.Timeout(requestTimeout))
		reg.Use(middleware.ContentTypeJSON)

		reg.Post("/registration/password-strength", h.handlePasswordStrength)
		reg.Post("/registration/sessions", h.handleCreateSession)
		reg.Route("/registration/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.handleGetSession)
			r.Delete("/", h.handleDisposeSession)
			r.Put("/draft", h.handleUpdateDraft)
			r.Post("/advance", h.handleAdvance)
			r.Post("/retreat", h.handleRetreat)
			r.Post("/username-check", h.handleUsernameCheck)
			r.Post("/submit", h.handleSubmit)
		})
	})
}

type createSessionRequest struct {
	SessionID string `json:"sessionId,omitempty"`
}

type createSessionResponse struct {
	Session   session.View `json:"session"`
	Recovered bool         `json:"recovered"`
}

// handleCreateSession starts a session. When the body carries a previously
// issued session ID and a recoverable draft exists under it, the session is
// re-hydrated from the draft.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.badRequest(w, r, "invalid request body", err)
			return
		}
	}

	s, recovered, err := h.sessions.Create(ctx, req.SessionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create registration session",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, createSessionResponse{
		Session:   s.State(),
		Recovered: recovered,
	})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.State())
}

func (h *Handler) handleDisposeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !h.sessions.Dispose(id) {
		httputil.WriteError(w, http.StatusNotFound, "session_not_found", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateDraftRequest struct {
	PersonalDetails models.PersonalDetails `json:"personalDetails"`
	Communication   models.Communication   `json:"communication"`
}

// handleUpdateDraft replaces the session's working copy with the submitted
// field state. Credentials never travel through this endpoint.
func (h *Handler) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req updateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, r, "invalid draft body", err)
		return
	}

	s.UpdateDraft(r.Context(), req.PersonalDetails, req.Communication)
	httputil.WriteJSON(w, http.StatusOK, s.State())
}

type stepResponse struct {
	Step     int  `json:"step"`
	Accepted bool `json:"accepted"`
}

// handleAdvance attempts one forward transition. A rejected transition is not
// an error: the caller gets the unchanged step and accepted=false.
func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	step, accepted := s.Advance(r.Context())
	httputil.WriteJSON(w, http.StatusOK, stepResponse{Step: step, Accepted: accepted})
}

func (h *Handler) handleRetreat(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	step, accepted := s.Retreat()
	httputil.WriteJSON(w, http.StatusOK, stepResponse{Step: step, Accepted: accepted})
}

type usernameCheckRequest struct {
	Username string `json:"username"`
}

// handleUsernameCheck performs an immediate availability lookup, bypassing
// the debounce window.
func (h *Handler) handleUsernameCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req usernameCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, r, "invalid username check body", err)
		return
	}

	res, err := s.CheckUsername(ctx, req.Username)
	if err != nil {
		h.logger.WarnContext(ctx, "username check rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, http.StatusConflict, "session_disposed", "")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

type passwordStrengthRequest struct {
	Password string `json:"password"`
}

type passwordStrengthResponse struct {
	Rules  [password.RuleCount]bool `json:"rules"`
	Strong bool                     `json:"strong"`
}

// handlePasswordStrength evaluates the fixed rule vector. Stateless, so it
// lives outside the session subtree.
func (h *Handler) handlePasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req passwordStrengthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, r, "invalid password strength body", err)
		return
	}

	rules := password.Evaluate(req.Password)
	httputil.WriteJSON(w, http.StatusOK, passwordStrengthResponse{
		Rules:  rules,
		Strong: password.Strong(req.Password),
	})
}

type submitRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// handleSubmit drives the completed registration through the pipeline.
// Outcomes, including failures, travel as data with a 200 status; transport
// errors are reserved for transport problems.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, r, "invalid submit body", err)
		return
	}

	outcome := s.Submit(r.Context(), models.Credentials{
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	s, ok := h.sessions.Get(id)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "session_not_found", "")
		return nil, false
	}
	return s, true
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err.Error(),
	)
	httputil.WriteError(w, http.StatusBadRequest, "invalid_request", msg)
}


