package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/pkg/observability"
)

const (
	statusPreparing  = "Preparing secure payment..."
	statusSubmitting = "Processing payment..."
	statusLoading    = "Loading secure fields..."

	fallbackInitError     = "Secure fields failed to initialize. Please close and try again."
	fallbackTokenizeError = "Your card details could not be processed. Please check them and try again."
	channelUnavailableMsg = "Unable to reach the secure payment fields. Please close and try again."
)

// Config holds the state machine's tunables.
type Config struct {
	// PublicKey is the public, non-secret client key sent in INIT.
	PublicKey string

	// InitGraceDelay is a best-effort nudge before sending INIT, since the
	// surface may not process messages immediately after its load event.
	// Readiness is only ever established by FIELDS_READY; zero disables
	// the nudge and sends INIT synchronously.
	InitGraceDelay time.Duration

	// AutoCloseDelay is how long a successful confirmation stays visible
	// before the session closes itself. Zero disables auto-close.
	AutoCloseDelay time.Duration

	// SubmitTimeout bounds the gateway call.
	SubmitTimeout time.Duration
}

// DefaultConfig returns production delays.
func DefaultConfig(publicKey string) Config {
	return Config{
		PublicKey:      publicKey,
		InitGraceDelay: 500 * time.Millisecond,
		AutoCloseDelay: 5 * time.Second,
		SubmitTimeout:  30 * time.Second,
	}
}

// session pairs the domain state with its transport and timers. All access
// is serialized on mu, which preserves the single-threaded event model:
// user actions, inbound messages and the gateway resolution all take it.
type session struct {
	mu         sync.Mutex
	state      *domain.Session
	channel    ports.MessageChannel
	initTimer  *time.Timer
	closeTimer *time.Timer
}

// Service drives the tokenization handshake and payment submission for
// every live session. It owns the sessions exclusively; hosts interact
// only through the operations below.
type Service struct {
	cfg      Config
	gateway  ports.SubmissionGateway
	recorder ports.AttemptRecorder
	logger   ports.Logger
	onClose  func(sessionID string)

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewService creates a checkout service. recorder may be nil.
func NewService(cfg Config, gateway ports.SubmissionGateway, recorder ports.AttemptRecorder, logger ports.Logger) *Service {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 30 * time.Second
	}
	return &Service{
		cfg:      cfg,
		gateway:  gateway,
		recorder: recorder,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// OnClose registers a hook invoked after a session is torn down. It runs
// on every exit path, auto-close included, so transport resources owned
// outside the service (the hub's channel binding) are released even when
// no HTTP close request ever arrives. Must be set before the first Open.
func (s *Service) OnClose(fn func(sessionID string)) {
	s.onClose = fn
}

// Open creates a session in the Opening phase and attaches the channel.
// Attachment happens exactly once per opening; the adapter's Attach is
// idempotent so a repeated Open of the same channel cannot duplicate
// delivery.
func (s *Service) Open(ctx context.Context, channel ports.MessageChannel) (string, error) {
	state := domain.NewSession()
	sess := &session{state: state, channel: channel}

	id := state.ID
	err := channel.Attach(func(msg domain.InboundMessage) {
		s.HandleMessage(id, msg)
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrorCodeTransportUnavailable, "attach message channel", err)
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	observability.RecordSessionOpened()
	s.logger.Info("checkout session opened", ports.String("session_id", id))
	return id, nil
}

// UpdateInput replaces the customer-entered fields. Input stays mutable
// until a submission starts; while processing the update is refused.
func (s *Service) UpdateInput(sessionID string, input domain.CustomerInput) error {
	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state.Processing {
		return domain.ErrSessionBusy
	}
	sess.state.Input = input
	sess.state.Touch()
	return nil
}

// SurfaceLoaded handles the surface's load event (independent of the
// message protocol) and sends INIT, optionally after the grace nudge.
func (s *Service) SurfaceLoaded(ctx context.Context, sessionID string) error {
	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := domain.ValidateTransition(sess.state.Phase, domain.PhaseAwaitingReady); err != nil {
		return err
	}
	sess.state.Phase = domain.PhaseAwaitingReady
	sess.state.SetStatus(statusLoading)
	sess.state.Touch()

	if s.cfg.InitGraceDelay <= 0 {
		s.sendInitLocked(ctx, sess)
		return nil
	}

	sess.initTimer = time.AfterFunc(s.cfg.InitGraceDelay, func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if sess.state.Phase != domain.PhaseAwaitingReady {
			return
		}
		s.sendInitLocked(context.Background(), sess)
	})
	return nil
}

// sendInitLocked sends INIT. Callers hold sess.mu.
func (s *Service) sendInitLocked(ctx context.Context, sess *session) {
	if err := sess.channel.Send(ctx, domain.NewInitCommand(s.cfg.PublicKey)); err != nil {
		s.logger.Error("failed to send INIT",
			ports.String("session_id", sess.state.ID),
			ports.Err(err))
		observability.RecordHandshakeFailure("init_send")
		sess.state.SetError(channelUnavailableMsg)
	}
}

// HandleMessage dispatches an inbound message from the capture surface.
// Every handler is guarded on the current phase: unexpected, duplicate or
// late messages are no-ops and can never trigger a second submission.
func (s *Service) HandleMessage(sessionID string, msg domain.InboundMessage) {
	if !msg.Recognized() {
		s.logger.Debug("ignoring unrecognized message",
			ports.String("session_id", sessionID),
			ports.String("action", string(msg.Action)))
		return
	}

	sess, err := s.get(sessionID)
	if err != nil {
		s.logger.Debug("message for unknown session dropped",
			ports.String("session_id", sessionID),
			ports.String("action", string(msg.Action)))
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state.Touch()

	switch msg.Action {
	case domain.ActionSurfaceLoaded:
		s.logger.Debug("surface reported loaded", ports.String("session_id", sessionID))

	case domain.ActionFieldsReady:
		s.onFieldsReadyLocked(sess)

	case domain.ActionInitError:
		s.onInitErrorLocked(sess, msg)

	case domain.ActionTokenGend:
		s.onTokenLocked(sess, msg)

	case domain.ActionTokenizeError, domain.ActionError:
		s.onTokenizeErrorLocked(sess, msg)
	}
}

func (s *Service) onFieldsReadyLocked(sess *session) {
	if sess.state.Phase != domain.PhaseAwaitingReady {
		return
	}
	sess.state.Phase = domain.PhaseReady
	sess.state.FieldsReady = true
	sess.state.ClearMessages()
	s.stopInitTimerLocked(sess)
	s.logger.Info("secure fields ready", ports.String("session_id", sess.state.ID))
}

func (s *Service) onInitErrorLocked(sess *session, msg domain.InboundMessage) {
	if sess.state.Phase != domain.PhaseAwaitingReady {
		return
	}
	reason := msg.ErrorReason()
	if reason == "" {
		reason = fallbackInitError
	}
	sess.state.Phase = domain.PhaseClosed
	sess.state.FieldsReady = false
	sess.state.SetError(reason)
	s.stopInitTimerLocked(sess)
	sess.channel.Detach()
	observability.RecordHandshakeFailure("init")
	s.logger.Warn("secure fields init failed",
		ports.String("session_id", sess.state.ID),
		ports.String("reason", reason))
}

func (s *Service) onTokenLocked(sess *session, msg domain.InboundMessage) {
	if sess.state.Phase != domain.PhaseTokenizing {
		// First valid transition wins; a duplicate TOKEN_GENERATED while
		// already submitting must not start a second submission.
		s.logger.Debug("token message outside tokenizing phase dropped",
			ports.String("session_id", sess.state.ID),
			ports.String("phase", string(sess.state.Phase)))
		return
	}

	token := msg.Token()
	if token == "" {
		s.failTokenizeLocked(sess, fallbackTokenizeError)
		return
	}

	sess.state.Phase = domain.PhaseSubmitting
	sess.state.StoreToken(token)
	sess.state.SetStatus(statusSubmitting)

	req := ports.SubmitRequest{
		Token:       token,
		AmountMinor: domain.MinorUnits(sess.state.Input.Amount),
		FirstName:   sess.state.Input.FirstName,
		LastName:    sess.state.Input.LastName,
		Email:       sess.state.Input.Email,
	}
	attemptID := sess.state.AttemptID

	s.logger.Info("token received, submitting payment",
		ports.String("session_id", sess.state.ID),
		ports.String("attempt_id", attemptID),
		ports.Int64("amount_minor", req.AmountMinor))

	go s.submit(sess, attemptID, req)
}

func (s *Service) onTokenizeErrorLocked(sess *session, msg domain.InboundMessage) {
	if sess.state.Phase != domain.PhaseTokenizing {
		return
	}
	reason := msg.ErrorReason()
	if reason == "" {
		reason = fallbackTokenizeError
	}
	s.failTokenizeLocked(sess, reason)
}

// failTokenizeLocked returns the session to Ready after a handshake
// failure. The token, if any was received, is discarded.
func (s *Service) failTokenizeLocked(sess *session, reason string) {
	sess.state.Phase = domain.PhaseReady
	sess.state.Processing = false
	sess.state.DiscardToken()
	sess.state.SetError(reason)
	observability.RecordHandshakeFailure("tokenize")
	s.logger.Warn("tokenization failed",
		ports.String("session_id", sess.state.ID),
		ports.String("reason", reason))
}

// Pay validates the customer input and starts a tokenize cycle. It is a
// no-op unless the session is exactly Ready with all four rules passing.
func (s *Service) Pay(ctx context.Context, sessionID string) error {
	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state.Touch()

	if sess.state.Processing {
		return domain.ErrSessionBusy
	}
	if sess.state.Phase != domain.PhaseReady {
		return domain.ErrSessionInvalidPhase
	}

	if violations := ValidateInput(sess.state.Input); len(violations) > 0 {
		msg := AggregateViolations(violations)
		sess.state.SetError(msg)
		return domain.NewDomainError(domain.ErrorCodeValidationFailed, msg)
	}

	sess.state.Phase = domain.PhaseTokenizing
	sess.state.Processing = true
	sess.state.SetStatus(statusPreparing)
	sess.state.NewAttempt()

	if err := sess.channel.Send(ctx, domain.NewTokenizeCommand()); err != nil {
		// Never stuck in Tokenizing with no outstanding request.
		sess.state.Phase = domain.PhaseReady
		sess.state.Processing = false
		sess.state.SetError(channelUnavailableMsg)
		observability.RecordHandshakeFailure("tokenize_send")
		s.logger.Error("failed to send TOKENIZE",
			ports.String("session_id", sessionID),
			ports.Err(err))
		return domain.WrapError(domain.ErrorCodeTransportUnavailable, "send TOKENIZE", err)
	}

	s.logger.Info("tokenize requested", ports.String("session_id", sessionID))
	return nil
}

// submit performs the single gateway call for one attempt and re-enters
// the session with the result. Runs outside the session lock.
func (s *Service) submit(sess *session, attemptID string, req ports.SubmitRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SubmitTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.gateway.Submit(ctx, req)
	elapsed := time.Since(start)
	observability.ObserveGatewaySubmit(elapsed)
	s.logger.Debug("gateway submission resolved",
		ports.String("session_id", sess.state.ID),
		ports.Duration("elapsed", elapsed))

	s.settle(sess, attemptID, req.AmountMinor, result, err)
}

// settle applies a gateway resolution to the session. Results for a stale
// attempt (the session was closed or reopened while the call was in
// flight) are discarded, never applied.
func (s *Service) settle(sess *session, attemptID string, amountMinor int64, result *ports.NormalizedResult, submitErr error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state.Phase != domain.PhaseSubmitting || sess.state.AttemptID != attemptID {
		s.logger.Warn("discarding stale gateway result",
			ports.String("session_id", sess.state.ID),
			ports.String("attempt_id", attemptID),
			ports.String("phase", string(sess.state.Phase)))
		return
	}

	// At most one submission per token, whatever the outcome.
	sess.state.DiscardToken()
	sess.state.Processing = false

	outcome := Reconcile(result, submitErr)
	observability.RecordSubmission(string(outcome.Kind), outcome.Code)
	s.record(sess.state.ID, attemptID, amountMinor, outcome)

	switch outcome.Kind {
	case OutcomeSuccess:
		sess.state.Phase = domain.PhaseSettledOK
		sess.state.SetSuccess(outcome.UserMessage)
		s.logger.Info("payment settled",
			ports.String("session_id", sess.state.ID),
			ports.String("transaction_id", outcome.TransactionID))
		s.scheduleAutoCloseLocked(sess)

	default:
		// Declines and system errors settle as failure, then return the
		// session to Ready; a retry always needs a brand-new tokenization
		// cycle since the token was consumed.
		sess.state.Phase = domain.PhaseSettledFailed
		sess.state.SetError(outcome.UserMessage)
		sess.state.Phase = domain.PhaseReady
		s.logger.Warn("payment failed",
			ports.String("session_id", sess.state.ID),
			ports.String("kind", string(outcome.Kind)),
			ports.String("code", outcome.Code),
			ports.String("diagnostic", outcome.Diagnostic))
	}
}

// record persists the settled attempt when a recorder is configured.
// Failures are logged and swallowed; the user outcome is already decided.
func (s *Service) record(sessionID, attemptID string, amountMinor int64, outcome Outcome) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.recorder.Record(ctx, ports.AttemptRecord{
		SessionID:       sessionID,
		AttemptID:       attemptID,
		Outcome:         string(outcome.Kind),
		TransactionID:   outcome.TransactionID,
		ResponseCode:    outcome.Code,
		ResponseMessage: outcome.UserMessage,
		AmountMinor:     amountMinor,
		SettledAt:       time.Now(),
	})
	if err != nil {
		s.logger.Error("failed to record attempt",
			ports.String("session_id", sessionID),
			ports.Err(err))
	}
}

func (s *Service) scheduleAutoCloseLocked(sess *session) {
	if s.cfg.AutoCloseDelay <= 0 {
		return
	}
	id := sess.state.ID
	sess.closeTimer = time.AfterFunc(s.cfg.AutoCloseDelay, func() {
		if err := s.Close(id); err != nil {
			s.logger.Debug("auto-close skipped", ports.String("session_id", id), ports.Err(err))
		}
	})
}

// Close tears the session down from any phase: timers canceled, token
// discarded, channel detached, session destroyed. Closing an already
// closed or unknown session is a no-op; a manual close racing the
// auto-close timer is safe.
func (s *Service) Close(sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}

	sess.mu.Lock()
	s.stopInitTimerLocked(sess)
	if sess.closeTimer != nil {
		sess.closeTimer.Stop()
		sess.closeTimer = nil
	}
	sess.state.DiscardToken()
	sess.state.Processing = false
	sess.state.FieldsReady = false
	sess.state.Phase = domain.PhaseClosed
	sess.state.ClearMessages()
	sess.channel.Detach()
	sess.mu.Unlock()

	if s.onClose != nil {
		s.onClose(sessionID)
	}

	observability.RecordSessionClosed()
	s.logger.Info("checkout session closed", ports.String("session_id", sessionID))
	return nil
}

// LiveSessions reports how many sessions are currently registered.
func (s *Service) LiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll tears down every live session, used on shutdown.
func (s *Service) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	for _, id := range ids {
		_ = s.Close(id)
	}
}

func (s *Service) stopInitTimerLocked(sess *session) {
	if sess.initTimer != nil {
		sess.initTimer.Stop()
		sess.initTimer = nil
	}
}

func (s *Service) get(sessionID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Snapshot is the UI-visible view of a session.
type Snapshot struct {
	SessionID      string `json:"sessionId"`
	Phase          string `json:"phase"`
	FieldsReady    bool   `json:"fieldsReady"`
	Processing     bool   `json:"processing"`
	CanPay         bool   `json:"canPay"`
	StatusMessage  string `json:"statusMessage,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	SuccessMessage string `json:"successMessage,omitempty"`
}

// Snapshot returns the current UI-visible state of a session.
func (s *Service) Snapshot(sessionID string) (Snapshot, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	st := sess.state
	return Snapshot{
		SessionID:      st.ID,
		Phase:          string(st.Phase),
		FieldsReady:    st.FieldsReady,
		Processing:     st.Processing,
		CanPay:         st.Phase == domain.PhaseReady && !st.Processing,
		StatusMessage:  st.StatusMessage,
		ErrorMessage:   st.ErrorMessage,
		SuccessMessage: st.SuccessMessage,
	}, nil
}
