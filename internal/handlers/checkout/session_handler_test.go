package checkout

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kevin07696/checkout-service/internal/adapters/channel"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	checkoutService "github.com/kevin07696/checkout-service/internal/services/checkout"
	"github.com/kevin07696/checkout-service/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	server  *httptest.Server
	hub     *channel.Hub
	gateway *mocks.MockGateway
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithConfig(t, checkoutService.Config{
		PublicKey:     "pk_test",
		SubmitTimeout: time.Second,
	})
}

func newEnvWithConfig(t *testing.T, cfg checkoutService.Config) *env {
	t.Helper()
	logger := mocks.NewMockLogger()
	gateway := mocks.NewMockGateway()
	hub := channel.NewHub(channel.AllowAnyOrigin(), nil, logger)
	service := checkoutService.NewService(cfg, gateway, nil, logger)
	service.OnClose(hub.Remove)

	handler := NewSessionHandler(service, hub, logger)
	r := chi.NewRouter()
	r.Mount("/api/v1/checkout", handler.Routes())
	r.Mount("/channel", hub.Routes())

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return &env{server: server, hub: hub, gateway: gateway}
}

func (e *env) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&buf)
	return resp, buf
}

type sessionResponse struct {
	SessionID    string `json:"sessionId"`
	Phase        string `json:"phase"`
	CanPay       bool   `json:"canPay"`
	ErrorMessage string `json:"errorMessage"`
	MessagesURL  string `json:"messagesUrl"`
	CommandsURL  string `json:"commandsUrl"`
}

func (e *env) openSession(t *testing.T, body string) sessionResponse {
	t.Helper()
	resp, raw := e.do(t, http.MethodPost, "/api/v1/checkout/sessions", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out sessionResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.SessionID)
	return out
}

func TestOpenSession(t *testing.T) {
	e := newEnv(t)

	out := e.openSession(t, `{"amount":"19.99","firstName":"Jane","lastName":"Doe","email":"jane@example.com"}`)

	assert.Equal(t, "OPENING", out.Phase)
	assert.False(t, out.CanPay)
	assert.Equal(t, "/channel/"+out.SessionID+"/messages", out.MessagesURL)
	assert.Equal(t, "/channel/"+out.SessionID+"/commands", out.CommandsURL)
}

func TestOpenSessionBadAmount(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodPost, "/api/v1/checkout/sessions", `{"amount":"not-a-number"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSessionNotFound(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/v1/checkout/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandshakeOverHTTP(t *testing.T) {
	e := newEnv(t)
	out := e.openSession(t, `{"amount":"10.00","firstName":"Jane","lastName":"Doe","email":"jane@example.com"}`)
	id := out.SessionID

	// Host reports the surface load event; INIT is queued for the surface.
	resp, _ := e.do(t, http.MethodPost, "/api/v1/checkout/sessions/"+id+"/loaded", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, raw := e.do(t, http.MethodGet, out.CommandsURL, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cmd struct {
		Action string `json:"action"`
	}
	require.NoError(t, json.Unmarshal(raw, &cmd))
	assert.Equal(t, "INIT", cmd.Action)

	// Surface confirms the fields are ready; pay becomes possible.
	resp, _ = e.do(t, http.MethodPost, out.MessagesURL, `{"action":"FIELDS_READY"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, raw = e.do(t, http.MethodGet, "/api/v1/checkout/sessions/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap sessionResponse
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, "READY", snap.Phase)
	assert.True(t, snap.CanPay)
}

func TestPayValidationOverHTTP(t *testing.T) {
	e := newEnv(t)
	out := e.openSession(t, `{"amount":"10.00","firstName":"","lastName":"Doe","email":"jane@example.com"}`)
	id := out.SessionID

	resp, _ := e.do(t, http.MethodPost, "/api/v1/checkout/sessions/"+id+"/loaded", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, out.MessagesURL, `{"action":"FIELDS_READY"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, raw := e.do(t, http.MethodPost, "/api/v1/checkout/sessions/"+id+"/pay", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var snap sessionResponse
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Contains(t, snap.ErrorMessage, "First name is required")
	assert.True(t, snap.CanPay)
}

func TestPayWrongPhaseOverHTTP(t *testing.T) {
	e := newEnv(t)
	out := e.openSession(t, `{"amount":"10.00","firstName":"Jane","lastName":"Doe","email":"jane@example.com"}`)

	resp, _ := e.do(t, http.MethodPost, "/api/v1/checkout/sessions/"+out.SessionID+"/pay", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateInputOverHTTP(t *testing.T) {
	e := newEnv(t)
	out := e.openSession(t, `{}`)

	resp, _ := e.do(t, http.MethodPut, "/api/v1/checkout/sessions/"+out.SessionID+"/input",
		`{"amount":"25.50","firstName":"Eve","lastName":"Doe","email":"eve@example.com"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPut, "/api/v1/checkout/sessions/"+out.SessionID+"/input", `{"amount":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAutoCloseUnbindsChannel(t *testing.T) {
	e := newEnvWithConfig(t, checkoutService.Config{
		PublicKey:      "pk_test",
		SubmitTimeout:  time.Second,
		AutoCloseDelay: 10 * time.Millisecond,
	})
	e.gateway.Result = &ports.NormalizedResult{Success: true, TransactionID: "TX700"}

	out := e.openSession(t, `{"amount":"10.00","firstName":"Jane","lastName":"Doe","email":"jane@example.com"}`)
	id := out.SessionID

	resp, _ := e.do(t, http.MethodPost, "/api/v1/checkout/sessions/"+id+"/loaded", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, out.MessagesURL, `{"action":"FIELDS_READY"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/v1/checkout/sessions/"+id+"/pay", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, out.MessagesURL, `{"action":"TOKEN_GENERATED","payload":{"token":"tok_auto"}}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	// The success confirmation closes the session by itself.
	require.Eventually(t, func() bool {
		resp, _ := e.do(t, http.MethodGet, "/api/v1/checkout/sessions/"+id, "")
		return resp.StatusCode == http.StatusNotFound
	}, time.Second, 5*time.Millisecond)

	// The channel endpoints are unbound too, not left answering for a
	// dead session.
	resp, _ = e.do(t, http.MethodPost, out.MessagesURL, `{"action":"FIELDS_READY"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, out.CommandsURL, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCloseSessionOverHTTP(t *testing.T) {
	e := newEnv(t)
	out := e.openSession(t, `{}`)
	id := out.SessionID

	resp, _ := e.do(t, http.MethodPost, "/api/v1/checkout/sessions/"+id+"/close", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Session and channel are both gone.
	resp, _ = e.do(t, http.MethodGet, "/api/v1/checkout/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, out.MessagesURL, `{"action":"FIELDS_READY"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Closing again stays a no-op.
	resp, _ = e.do(t, http.MethodPost, "/api/v1/checkout/sessions/"+id+"/close", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
