package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageSlotExclusivity(t *testing.T) {
	s := NewSession()

	s.SetStatus("working")
	assert.Equal(t, "working", s.StatusMessage)
	assert.Empty(t, s.ErrorMessage)
	assert.Empty(t, s.SuccessMessage)

	s.SetError("broken")
	assert.Empty(t, s.StatusMessage)
	assert.Equal(t, "broken", s.ErrorMessage)
	assert.Empty(t, s.SuccessMessage)

	s.SetSuccess("done")
	assert.Empty(t, s.StatusMessage)
	assert.Empty(t, s.ErrorMessage)
	assert.Equal(t, "done", s.SuccessMessage)

	s.ClearMessages()
	assert.Empty(t, s.StatusMessage)
	assert.Empty(t, s.ErrorMessage)
	assert.Empty(t, s.SuccessMessage)
}

func TestTokenLifecycle(t *testing.T) {
	s := NewSession()
	assert.Empty(t, s.Token())

	s.StoreToken("T1")
	assert.Equal(t, "T1", s.Token())

	s.DiscardToken()
	assert.Empty(t, s.Token())
}

func TestNewAttemptChangesID(t *testing.T) {
	s := NewSession()
	first := s.NewAttempt()
	second := s.NewAttempt()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, s.AttemptID)
}

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Phase
		to      Phase
		allowed bool
	}{
		{"closed to opening", PhaseClosed, PhaseOpening, true},
		{"opening to awaiting ready", PhaseOpening, PhaseAwaitingReady, true},
		{"awaiting ready to ready", PhaseAwaitingReady, PhaseReady, true},
		{"ready to tokenizing", PhaseReady, PhaseTokenizing, true},
		{"tokenizing to submitting", PhaseTokenizing, PhaseSubmitting, true},
		{"tokenizing back to ready", PhaseTokenizing, PhaseReady, true},
		{"submitting to settled success", PhaseSubmitting, PhaseSettledOK, true},
		{"submitting to settled failure", PhaseSubmitting, PhaseSettledFailed, true},
		{"settled failure back to ready", PhaseSettledFailed, PhaseReady, true},
		{"any phase to closed", PhaseSubmitting, PhaseClosed, true},
		{"closed straight to ready", PhaseClosed, PhaseReady, false},
		{"ready straight to submitting", PhaseReady, PhaseSubmitting, false},
		{"settled success back to ready", PhaseSettledOK, PhaseReady, false},
		{"opening straight to tokenizing", PhaseOpening, PhaseTokenizing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))

			err := ValidateTransition(tt.from, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.True(t, IsDomainError(err, ErrorCodeSessionInvalidPhase))
			}
		})
	}
}
