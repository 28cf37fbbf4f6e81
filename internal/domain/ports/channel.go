package ports

import (
	"context"

	"github.com/kevin07696/checkout-service/internal/domain"
)

// MessageHandler receives inbound messages that passed origin verification.
type MessageHandler func(msg domain.InboundMessage)

// OriginVerifier decides whether a sender identity is trusted before an
// inbound message is accepted as authoritative. The transport never enforces
// authenticity on its own; any deployment handling live funds must install a
// restrictive verifier.
type OriginVerifier interface {
	Verify(origin string) bool
}

// OriginVerifierFunc adapts a function to the OriginVerifier interface.
type OriginVerifierFunc func(origin string) bool

// Verify implements OriginVerifier
func (f OriginVerifierFunc) Verify(origin string) bool {
	return f(origin)
}

// MessageChannel is the bidirectional, unordered, fire-and-forget transport
// between the host and the secure capture surface. There is no delivery
// guarantee and no built-in request/response correlation.
//
// Attach and Detach are idempotent: attaching twice must not duplicate
// delivery, detaching when not attached is a no-op.
type MessageChannel interface {
	Attach(handler MessageHandler) error
	Detach()
	Send(ctx context.Context, cmd domain.OutboundCommand) error
}
