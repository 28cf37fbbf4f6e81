package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevin07696/checkout-service/internal/adapters/channel"
	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	checkoutService "github.com/kevin07696/checkout-service/internal/services/checkout"
	"github.com/shopspring/decimal"
)

// SessionHandler exposes the host-side checkout API: the UI opens and
// closes sessions, pushes customer input, reports the surface load event
// and triggers pay. The surface itself talks to the channel hub, not here.
type SessionHandler struct {
	service *checkoutService.Service
	hub     *channel.Hub
	logger  ports.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service *checkoutService.Service, hub *channel.Hub, logger ports.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

// Routes returns the chi router for the host API.
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/sessions", h.OpenSession)
	r.Get("/sessions/{sessionID}", h.GetSession)
	r.Put("/sessions/{sessionID}/input", h.UpdateInput)
	r.Post("/sessions/{sessionID}/loaded", h.SurfaceLoaded)
	r.Post("/sessions/{sessionID}/pay", h.Pay)
	r.Post("/sessions/{sessionID}/close", h.CloseSession)
	return r
}

// customerInputRequest is the wire shape for customer fields. Amount is a
// decimal string in major units ("10.00").
type customerInputRequest struct {
	Amount    string `json:"amount"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (req customerInputRequest) toDomain() (domain.CustomerInput, error) {
	amount := decimal.Zero
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return domain.CustomerInput{}, err
		}
		amount = parsed
	}
	return domain.CustomerInput{
		Amount:    amount,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}, nil
}

type openSessionResponse struct {
	checkoutService.Snapshot
	// Endpoints the embedded surface uses for its leg of the channel.
	MessagesURL string `json:"messagesUrl"`
	CommandsURL string `json:"commandsUrl"`
}

// OpenSession opens a checkout session and binds its message channel.
func (h *SessionHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req customerInputRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}

	ch := h.hub.NewChannel()
	sessionID, err := h.service.Open(r.Context(), ch)
	if err != nil {
		h.logger.Error("failed to open session", ports.Err(err))
		h.writeError(w, http.StatusInternalServerError, "could not open session")
		return
	}
	h.hub.Bind(sessionID, ch)

	input, err := req.toDomain()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	if err := h.service.UpdateInput(sessionID, input); err != nil {
		h.logger.Error("failed to set initial input", ports.String("session_id", sessionID), ports.Err(err))
	}

	snap, err := h.service.Snapshot(sessionID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "could not read session")
		return
	}

	h.writeJSON(w, http.StatusCreated, openSessionResponse{
		Snapshot:    snap,
		MessagesURL: "/channel/" + sessionID + "/messages",
		CommandsURL: "/channel/" + sessionID + "/commands",
	})
}

// GetSession returns the UI-visible state of a session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	snap, err := h.service.Snapshot(sessionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// UpdateInput replaces the customer-entered fields.
func (h *SessionHandler) UpdateInput(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req customerInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	input, err := req.toDomain()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	if err := h.service.UpdateInput(sessionID, input); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SurfaceLoaded handles the surface's load event.
func (h *SessionHandler) SurfaceLoaded(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.service.SurfaceLoaded(r.Context(), sessionID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Pay triggers the tokenize/submit cycle.
func (h *SessionHandler) Pay(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	err := h.service.Pay(r.Context(), sessionID)
	snap, snapErr := h.service.Snapshot(sessionID)
	if snapErr != nil {
		h.writeDomainError(w, snapErr)
		return
	}

	// Validation and phase refusals still return the snapshot so the UI
	// can render the aggregated message without a second round-trip.
	status := http.StatusAccepted
	if err != nil {
		status = http.StatusUnprocessableEntity
		if !domain.IsValidationError(err) {
			status = http.StatusConflict
		}
	}
	h.writeJSON(w, status, snap)
}

// CloseSession cancels/tears down the session from any phase. The hub
// binding is released by the service's close hook, the same path the
// auto-close timer uses.
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.service.Close(sessionID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) writeDomainError(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrorCodeSessionNotFound:
			h.writeError(w, http.StatusNotFound, domainErr.Message)
			return
		case domain.ErrorCodeSessionBusy, domain.ErrorCodeSessionInvalidPhase:
			h.writeError(w, http.StatusConflict, domainErr.Message)
			return
		}
	}
	h.writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *SessionHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", ports.Err(err))
	}
}
