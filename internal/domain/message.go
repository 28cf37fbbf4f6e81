package domain

import (
	"encoding/json"
)

// InboundAction identifies a message from the secure capture surface.
// The set is closed; anything else is ignored for forward compatibility.
type InboundAction string

const (
	ActionSurfaceLoaded InboundAction = "VF_LOADED"
	ActionFieldsReady   InboundAction = "FIELDS_READY"
	ActionInitError     InboundAction = "INIT_ERROR"
	ActionTokenGend     InboundAction = "TOKEN_GENERATED"
	ActionTokenizeError InboundAction = "TOKENIZE_ERROR"
	ActionError         InboundAction = "ERROR"
)

// knownInboundActions is the closed action set accepted from the surface.
var knownInboundActions = map[InboundAction]struct{}{
	ActionSurfaceLoaded: {},
	ActionFieldsReady:   {},
	ActionInitError:     {},
	ActionTokenGend:     {},
	ActionTokenizeError: {},
	ActionError:         {},
}

// InboundMessage is the typed envelope arriving from the secure capture
// surface. Payload is action-specific and optional.
type InboundMessage struct {
	Action  InboundAction   `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Recognized reports whether the message carries a known action. Messages
// with no action or an unrecognized one are silently dropped, not errors.
func (m InboundMessage) Recognized() bool {
	_, ok := knownInboundActions[m.Action]
	return ok
}

// TokenPayload is the payload of TOKEN_GENERATED.
type TokenPayload struct {
	Token string `json:"token"`
}

// ErrorPayload is the payload of INIT_ERROR, TOKENIZE_ERROR and ERROR.
type ErrorPayload struct {
	Error string `json:"error"`
}

// Token extracts the token from a TOKEN_GENERATED payload.
func (m InboundMessage) Token() string {
	var p TokenPayload
	if len(m.Payload) == 0 {
		return ""
	}
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return ""
	}
	return p.Token
}

// ErrorReason extracts the error text from an error payload, or empty.
func (m InboundMessage) ErrorReason() string {
	var p ErrorPayload
	if len(m.Payload) == 0 {
		return ""
	}
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return ""
	}
	return p.Error
}

// OutboundAction identifies a command sent to the secure capture surface.
type OutboundAction string

const (
	CommandInit     OutboundAction = "INIT"
	CommandTokenize OutboundAction = "TOKENIZE"
)

// OutboundCommand is the typed envelope sent to the secure capture surface.
// INIT carries the public (non-secret) client key; TOKENIZE has no payload.
type OutboundCommand struct {
	Action  OutboundAction  `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InitPayload is the payload of the INIT command.
type InitPayload struct {
	PublicKey string `json:"publicKey"`
}

// NewInitCommand builds the INIT command for the given public client key.
func NewInitCommand(publicKey string) OutboundCommand {
	payload, _ := json.Marshal(InitPayload{PublicKey: publicKey})
	return OutboundCommand{Action: CommandInit, Payload: payload}
}

// NewTokenizeCommand builds the TOKENIZE command.
func NewTokenizeCommand() OutboundCommand {
	return OutboundCommand{Action: CommandTokenize}
}
