package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/biogen/internal/domain"
	"github.com/ashureev/biogen/internal/identity"
	"github.com/ashureev/biogen/internal/session"
	"github.com/go-chi/chi/v5"
)

// SessionHandler exposes the form session operations.
type SessionHandler struct {
	*Handler
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(base *Handler) *SessionHandler {
	return &SessionHandler{Handler: base}
}

// RegisterRoutes registers session routes.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/options", h.GetOptions)
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Put("/fields", h.SetField)
			r.Get("/prompt", h.GetPrompt)
			r.Post("/submit", h.Submit)
			r.Post("/reset", h.Reset)
			r.Post("/copy", h.Copy)
		})
	})
}

type setFieldRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (h *SessionHandler) controller(r *http.Request) (*session.Controller, string, string) {
	ownerID := identity.OwnerIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	return h.sessions.Get(ownerID, sessionID), ownerID, sessionID
}

// GetOptions returns the selectable tones, focuses and the experience limit.
func (h *SessionHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"tones":                 domain.ToneOptions,
		"focuses":               domain.FocusOptions,
		"max_experience_length": domain.MaxExperienceLength,
	})
}

// GetSession returns the caller's current snapshot.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, _, _ := h.controller(r)
	JSON(w, http.StatusOK, ctrl.Snapshot())
}

// SetField updates one field. Oversized experience text is ignored and the
// unchanged snapshot is returned.
func (h *SessionHandler) SetField(w http.ResponseWriter, r *http.Request) {
	var req setFieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	field, err := domain.ParseField(req.Name)
	if err != nil {
		Error(w, http.StatusBadRequest, "unknown_field")
		return
	}

	ctrl, ownerID, sessionID := h.controller(r)
	if err := ctrl.SetField(field, req.Value); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidOption):
			Error(w, http.StatusBadRequest, "invalid_option")
		case errors.Is(err, session.ErrClosed):
			Error(w, http.StatusGone, "session_closed")
		default:
			slog.Error("Failed to set field", "error", err, "owner_id", ownerID, "session_id", sessionID)
			Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	JSON(w, http.StatusOK, ctrl.Snapshot())
}

// GetPrompt returns the prompt that Submit would send.
func (h *SessionHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	ctrl, _, _ := h.controller(r)
	JSON(w, http.StatusOK, map[string]string{"prompt": ctrl.BuildPrompt()})
}

// Submit starts bio generation and returns the pending snapshot. The result
// is delivered through the session stream and later GetSession calls.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctrl, ownerID, sessionID := h.controller(r)

	snap, err := ctrl.SubmitAsync()
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSubmitInFlight):
			slog.Warn("Submit already in flight", "owner_id", ownerID, "session_id", sessionID)
			Error(w, http.StatusConflict, "submit_in_flight")
		case errors.Is(err, session.ErrClosed):
			Error(w, http.StatusGone, "session_closed")
		default:
			Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	slog.Info("Bio generation started", "owner_id", ownerID, "session_id", sessionID)
	JSON(w, http.StatusAccepted, snap)
}

// Reset restores the form defaults.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctrl, _, _ := h.controller(r)
	ctrl.Reset()
	JSON(w, http.StatusOK, ctrl.Snapshot())
}

// Copy writes the generated bio to the host clipboard.
func (h *SessionHandler) Copy(w http.ResponseWriter, r *http.Request) {
	ctrl, ownerID, sessionID := h.controller(r)

	err := ctrl.CopyResult()
	switch {
	case err == nil, errors.Is(err, session.ErrClipboard), errors.Is(err, session.ErrSuperseded):
		// Clipboard failures are reported through the snapshot's error slot.
		// A superseded copy just returns the newer state.
		JSON(w, http.StatusOK, ctrl.Snapshot())
	case errors.Is(err, session.ErrNothingToCopy):
		Error(w, http.StatusConflict, "nothing_to_copy")
	case errors.Is(err, session.ErrClosed):
		Error(w, http.StatusGone, "session_closed")
	default:
		slog.Error("Copy failed", "error", err, "owner_id", ownerID, "session_id", sessionID)
		Error(w, http.StatusInternalServerError, err.Error())
	}
}
