package checkout

import (
	"testing"

	pkgerrors "github.com/kevin07696/checkout-service/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLookupResponseCode(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantOK    bool
		category  pkgerrors.ErrorCategory
		retriable bool
	}{
		{
			name:      "do not honour short code",
			code:      "05",
			wantOK:    true,
			category:  pkgerrors.CategoryDeclined,
			retriable: false,
		},
		{
			name:      "do not honour gateway code",
			code:      "D4405",
			wantOK:    true,
			category:  pkgerrors.CategoryDeclined,
			retriable: false,
		},
		{
			name:      "insufficient funds is retriable",
			code:      "51",
			wantOK:    true,
			category:  pkgerrors.CategoryInsufficientFunds,
			retriable: true,
		},
		{
			name:      "issuer timeout is retriable",
			code:      "91",
			wantOK:    true,
			category:  pkgerrors.CategorySystemError,
			retriable: true,
		},
		{
			name:   "unknown code",
			code:   "ZZ999",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := LookupResponseCode(tt.code)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.category, info.Category)
			assert.Equal(t, tt.retriable, info.IsRetriable)
			assert.NotEmpty(t, info.UserMessage)
		})
	}
}

func TestResponseCodeTableConsistency(t *testing.T) {
	for code, info := range gatewayResponseCodes {
		assert.Equal(t, code, info.Code, "map key must match info code for %s", code)
		assert.NotEmpty(t, info.UserMessage, "every code needs a user message: %s", code)
		assert.NotEmpty(t, info.Description, "every code needs a description: %s", code)
	}
}
