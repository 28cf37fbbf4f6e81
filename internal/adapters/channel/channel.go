package channel

import (
	"context"
	"sync"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/pkg/observability"
)

// outboxSize bounds queued outbound commands per session. The protocol
// never has more than one command outstanding, so a small buffer is enough.
const outboxSize = 8

// Channel is one session's transport leg between the host and the secure
// capture surface. Delivery is fire-and-forget in both directions: inbound
// messages are dropped when no handler is attached, outbound commands are
// queued until the surface polls for them.
type Channel struct {
	mu       sync.Mutex
	handler  ports.MessageHandler
	verifier ports.OriginVerifier
	logger   ports.Logger
	outbox   chan domain.OutboundCommand
	closed   bool
}

// NewChannel creates a channel with the given origin verifier. The verifier
// is consulted on every inbound delivery; pass an allow-list verifier in
// any deployment handling live funds.
func NewChannel(verifier ports.OriginVerifier, logger ports.Logger) *Channel {
	return &Channel{
		verifier: verifier,
		logger:   logger,
		outbox:   make(chan domain.OutboundCommand, outboxSize),
	}
}

// Attach installs the inbound handler. There is a single handler slot, so
// attaching twice replaces rather than duplicates delivery.
func (c *Channel) Attach(handler ports.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrTransportUnavailable
	}
	c.handler = handler
	return nil
}

// Detach removes the handler. Detaching when not attached is a no-op.
func (c *Channel) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = nil
}

// Send queues an outbound command for the surface to collect. It fails
// when the channel is closed or the outbox is saturated; the state machine
// treats either as "no channel endpoint available".
func (c *Channel) Send(ctx context.Context, cmd domain.OutboundCommand) error {
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrorCodeTransportUnavailable, "send outbound command", err)
	}

	// The send stays under the lock so Close cannot race a queued send.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrTransportUnavailable
	}

	select {
	case c.outbox <- cmd:
		return nil
	default:
		return domain.NewDomainError(domain.ErrorCodeTransportUnavailable, "outbound command queue full")
	}
}

// Deliver feeds an inbound message from the surface into the attached
// handler after origin verification. A rejected origin is an error the
// transport layer surfaces to the sender; an unattached channel silently
// drops the message, matching the no-delivery-guarantee contract.
func (c *Channel) Deliver(origin string, msg domain.InboundMessage) error {
	if c.verifier != nil && !c.verifier.Verify(origin) {
		observability.RecordInboundMessage(string(msg.Action), false)
		c.logger.Warn("inbound message rejected by origin verifier",
			ports.String("origin", origin),
			ports.String("action", string(msg.Action)))
		return domain.ErrOriginRejected
	}

	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()

	if handler == nil {
		observability.RecordInboundMessage(string(msg.Action), false)
		c.logger.Debug("inbound message dropped, no handler attached",
			ports.String("action", string(msg.Action)))
		return nil
	}

	observability.RecordInboundMessage(string(msg.Action), true)
	handler(msg)
	return nil
}

// NextCommand blocks until an outbound command is queued or the context
// expires. ok is false on expiry or close.
func (c *Channel) NextCommand(ctx context.Context) (domain.OutboundCommand, bool) {
	select {
	case cmd, open := <-c.outbox:
		return cmd, open
	case <-ctx.Done():
		return domain.OutboundCommand{}, false
	}
}

// Close marks the channel unusable and detaches any handler.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.handler = nil
	close(c.outbox)
}
