package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/pkg/middleware"
)

// commandPollTimeout is how long a surface's command poll waits before
// returning empty. Kept under common proxy idle timeouts.
const commandPollTimeout = 25 * time.Second

// maxInboundBody bounds inbound message payloads.
const maxInboundBody = 16 * 1024

// Hub routes HTTP traffic from secure capture surfaces to their
// per-session channels. Inbound messages arrive as JSON POSTs; outbound
// commands are collected by long-polling.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	verifier ports.OriginVerifier
	limiter  *middleware.RateLimiter
	logger   ports.Logger
}

// NewHub creates a hub. All channels it creates share one origin verifier
// and the inbound endpoints share one rate limiter.
func NewHub(verifier ports.OriginVerifier, limiter *middleware.RateLimiter, logger ports.Logger) *Hub {
	return &Hub{
		channels: make(map[string]*Channel),
		verifier: verifier,
		limiter:  limiter,
		logger:   logger,
	}
}

// NewChannel creates an unbound channel for a session about to open.
func (h *Hub) NewChannel() *Channel {
	return NewChannel(h.verifier, h.logger)
}

// Bind associates a channel with its session ID so HTTP traffic can reach it.
func (h *Hub) Bind(sessionID string, ch *Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channels[sessionID] = ch
}

// Remove closes and forgets a session's channel.
func (h *Hub) Remove(sessionID string) {
	h.mu.Lock()
	ch, ok := h.channels[sessionID]
	if ok {
		delete(h.channels, sessionID)
	}
	h.mu.Unlock()
	if ok {
		ch.Close()
	}
}

func (h *Hub) get(sessionID string) (*Channel, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ch, ok := h.channels[sessionID]
	return ch, ok
}

// Routes returns the chi router the surface talks to.
func (h *Hub) Routes() chi.Router {
	r := chi.NewRouter()
	if h.limiter != nil {
		r.Use(h.limiter.Middleware)
	}
	r.Post("/{sessionID}/messages", h.handleInbound)
	r.Get("/{sessionID}/commands", h.handleCommands)
	return r
}

// handleInbound accepts one inbound message from the surface.
func (h *Hub) handleInbound(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ch, ok := h.get(sessionID)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	var msg domain.InboundMessage
	body := http.MaxBytesReader(w, r.Body, maxInboundBody)
	if err := json.NewDecoder(body).Decode(&msg); err != nil {
		http.Error(w, "malformed message", http.StatusBadRequest)
		return
	}

	if err := ch.Deliver(r.Header.Get("Origin"), msg); err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeTransportRejected) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}
		http.Error(w, "delivery failed", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handleCommands long-polls for the next outbound command. Returns 204
// when nothing is queued within the poll window.
func (h *Hub) handleCommands(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ch, ok := h.get(sessionID)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), commandPollTimeout)
	defer cancel()

	cmd, ok := ch.NextCommand(ctx)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cmd); err != nil {
		h.logger.Error("failed to encode outbound command",
			ports.String("session_id", sessionID),
			ports.Err(err))
	}
}
