package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() ports.SubmitRequest {
	return ports.SubmitRequest{
		Token:       "tok_test_abc",
		AmountMinor: 1999,
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
	}
}

func TestSubmitSuccess(t *testing.T) {
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":       true,
			"transactionId": "TX100",
			"responseCode":  "00",
			"extraField":    "preserved",
		})
	}))
	defer server.Close()

	adapter := NewSubmitAdapter(server.URL, server.Client(), mocks.NewMockLogger())
	result, err := adapter.Submit(context.Background(), testRequest())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "TX100", result.TransactionID)
	assert.Equal(t, "00", result.ResponseCode)
	assert.Contains(t, string(result.RawResponse), "extraField")

	assert.Equal(t, "tok_test_abc", gotPayload["token"])
	assert.Equal(t, float64(1999), gotPayload["amount"])
	assert.Equal(t, "jane@example.com", gotPayload["email"])
}

func TestSubmitDecline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         false,
			"responseCode":    "D4405",
			"responseMessage": "Do not honour",
		})
	}))
	defer server.Close()

	adapter := NewSubmitAdapter(server.URL, server.Client(), mocks.NewMockLogger())
	result, err := adapter.Submit(context.Background(), testRequest())

	// A decline is a resolved submission, not a transport error.
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "D4405", result.ResponseCode)
	assert.Equal(t, "Do not honour", result.ResponseMessage)
}

func TestSubmitUnparseableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream error</html>"))
	}))
	defer server.Close()

	adapter := NewSubmitAdapter(server.URL, server.Client(), mocks.NewMockLogger())
	result, err := adapter.Submit(context.Background(), testRequest())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, domain.ErrorCodeSubmissionBadReply, domain.GetErrorCode(err))
	assert.Contains(t, err.Error(), "502")
}

func TestSubmitTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	adapter := NewSubmitAdapter(server.URL, &http.Client{Timeout: time.Second}, mocks.NewMockLogger())
	result, err := adapter.Submit(context.Background(), testRequest())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, domain.ErrorCodeSubmissionFailed, domain.GetErrorCode(err))
}

func TestSubmitContextCanceled(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	adapter := NewSubmitAdapter(server.URL, server.Client(), mocks.NewMockLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := adapter.Submit(ctx, testRequest())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeSubmissionFailed, domain.GetErrorCode(err))
}

func TestSubmitTokenNeverLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "transactionId": "TX1"})
	}))
	defer server.Close()

	logger := mocks.NewMockLogger()
	adapter := NewSubmitAdapter(server.URL, server.Client(), logger)
	_, err := adapter.Submit(context.Background(), testRequest())
	require.NoError(t, err)

	for key, values := range logger.FieldValues() {
		for _, v := range values {
			assert.NotEqual(t, "tok_test_abc", v, "token leaked into log field %q", key)
		}
	}
}
