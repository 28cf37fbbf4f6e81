package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Phase represents the lifecycle phase of a checkout session
type Phase string

const (
	PhaseClosed        Phase = "CLOSED"
	PhaseOpening       Phase = "OPENING"
	PhaseAwaitingReady Phase = "AWAITING_READY"
	PhaseReady         Phase = "READY"
	PhaseTokenizing    Phase = "TOKENIZING"
	PhaseSubmitting    Phase = "SUBMITTING"
	PhaseSettledOK     Phase = "SETTLED_SUCCESS"
	PhaseSettledFailed Phase = "SETTLED_FAILURE"
)

// AllowedTransitions defines the valid phase transitions.
// The key is the current phase, the value is the set of valid target phases.
// Close is allowed from every phase and is handled separately.
var AllowedTransitions = map[Phase][]Phase{
	PhaseClosed:        {PhaseOpening},
	PhaseOpening:       {PhaseAwaitingReady},
	PhaseAwaitingReady: {PhaseReady},
	PhaseReady:         {PhaseTokenizing},
	PhaseTokenizing:    {PhaseSubmitting, PhaseReady},
	PhaseSubmitting:    {PhaseSettledOK, PhaseSettledFailed},
	PhaseSettledOK:     {},
	PhaseSettledFailed: {PhaseReady},
}

// CanTransition checks if a transition between two phases is allowed.
// Transitions to PhaseClosed (cancel/close) are always allowed.
func CanTransition(from, to Phase) bool {
	if to == PhaseClosed {
		return true
	}
	for _, p := range AllowedTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a DomainError if the transition is not allowed.
func ValidateTransition(from, to Phase) error {
	if !CanTransition(from, to) {
		return NewDomainError(ErrorCodeSessionInvalidPhase, "invalid phase transition").
			WithDetail("from", string(from)).
			WithDetail("to", string(to))
	}
	return nil
}

// CustomerInput holds the fields the customer fills in before paying.
// All fields stay mutable until a submission starts.
type CustomerInput struct {
	Amount    decimal.Decimal // dollars, converted to minor units at submission
	FirstName string
	LastName  string
	Email     string
}

// Session is a single payment attempt. It is owned exclusively by the
// checkout service; all access goes through the service's per-session lock.
//
// The token is present only between tokenization success and submission
// completion and must never be persisted or logged.
type Session struct {
	ID        string
	AttemptID string // regenerated per tokenize cycle; stale gateway results are matched against it
	Phase     Phase
	Input     CustomerInput

	// Message slots. At most one is non-empty at any instant; use the
	// setters below rather than assigning directly.
	StatusMessage  string
	ErrorMessage   string
	SuccessMessage string

	Processing   bool
	FieldsReady  bool
	token        string
	CreatedAt    time.Time
	LastActivity time.Time
}

// NewSession creates a session in the Opening phase.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		Phase:        PhaseOpening,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// SetStatus sets the status slot and clears the other two.
func (s *Session) SetStatus(msg string) {
	s.StatusMessage = msg
	s.ErrorMessage = ""
	s.SuccessMessage = ""
}

// SetError sets the error slot and clears the other two.
func (s *Session) SetError(msg string) {
	s.ErrorMessage = msg
	s.StatusMessage = ""
	s.SuccessMessage = ""
}

// SetSuccess sets the success slot and clears the other two.
func (s *Session) SetSuccess(msg string) {
	s.SuccessMessage = msg
	s.StatusMessage = ""
	s.ErrorMessage = ""
}

// ClearMessages empties all three message slots.
func (s *Session) ClearMessages() {
	s.StatusMessage = ""
	s.ErrorMessage = ""
	s.SuccessMessage = ""
}

// StoreToken records the single-use token for the in-flight attempt.
func (s *Session) StoreToken(token string) {
	s.token = token
}

// Token returns the stored token, or empty if none is held.
func (s *Session) Token() string {
	return s.token
}

// DiscardToken forgets the token. Called unconditionally on leaving
// Submitting and on every close path; a token is valid for exactly one
// submission attempt.
func (s *Session) DiscardToken() {
	s.token = ""
}

// NewAttempt assigns a fresh attempt ID and returns it. Gateway results
// carrying a different attempt ID are late arrivals and must be dropped.
func (s *Session) NewAttempt() string {
	s.AttemptID = uuid.New().String()
	return s.AttemptID
}

// Touch updates the last-activity timestamp.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}
