package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(AllowedOrigins("https://shop.example.com"), nil, mocks.NewMockLogger())
}

func TestHubInbound(t *testing.T) {
	hub := newTestHub()
	ch := hub.NewChannel()
	hub.Bind("sess-1", ch)

	var received []domain.InboundMessage
	require.NoError(t, ch.Attach(func(msg domain.InboundMessage) {
		received = append(received, msg)
	}))

	server := httptest.NewServer(hub.Routes())
	defer server.Close()

	post := func(sessionID, origin, body string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, server.URL+"/"+sessionID+"/messages", strings.NewReader(body))
		require.NoError(t, err)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	t.Run("unknown session", func(t *testing.T) {
		resp := post("sess-missing", "https://shop.example.com", `{"action":"FIELDS_READY"}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := post("sess-1", "https://shop.example.com", `{not json`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejected origin", func(t *testing.T) {
		resp := post("sess-1", "https://evil.example.com", `{"action":"TOKEN_GENERATED","payload":{"token":"tok_x"}}`)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Empty(t, received)
	})

	t.Run("accepted and delivered", func(t *testing.T) {
		resp := post("sess-1", "https://shop.example.com", `{"action":"FIELDS_READY"}`)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		require.Len(t, received, 1)
		assert.Equal(t, domain.ActionFieldsReady, received[0].Action)
	})
}

func TestHubCommands(t *testing.T) {
	hub := newTestHub()
	ch := hub.NewChannel()
	hub.Bind("sess-1", ch)

	server := httptest.NewServer(hub.Routes())
	defer server.Close()

	t.Run("unknown session", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/sess-missing/commands")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("queued command is returned", func(t *testing.T) {
		require.NoError(t, ch.Send(context.Background(), domain.NewInitCommand("pk_test")))

		resp, err := http.Get(server.URL + "/sess-1/commands")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var cmd domain.OutboundCommand
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&cmd))
		assert.Equal(t, domain.CommandInit, cmd.Action)
		var payload domain.InitPayload
		require.NoError(t, json.Unmarshal(cmd.Payload, &payload))
		assert.Equal(t, "pk_test", payload.PublicKey)
	})

	t.Run("closed channel resolves with no content", func(t *testing.T) {
		closed := NewChannel(AllowAnyOrigin(), mocks.NewMockLogger())
		closed.Close()
		hub.Bind("sess-closed", closed)

		resp, err := http.Get(server.URL + "/sess-closed/commands")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestHubRemove(t *testing.T) {
	hub := newTestHub()
	ch := hub.NewChannel()
	hub.Bind("sess-1", ch)

	hub.Remove("sess-1")

	// Channel is closed and unrouted.
	assert.ErrorIs(t, ch.Send(context.Background(), domain.NewTokenizeCommand()), domain.ErrTransportUnavailable)
	_, ok := hub.get("sess-1")
	assert.False(t, ok)

	// Removing twice is safe.
	hub.Remove("sess-1")
}
