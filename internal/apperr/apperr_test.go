package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
)

func TestAborted(t *testing.T) {
	storeErr := errors.New("connection reset")

	tests := []struct {
		name      string
		err       error
		wantAbort bool
	}{
		{name: "Nil", err: nil},
		{name: "StoreFailure", err: storeErr, wantAbort: true},
		{name: "NotFoundPassesThrough", err: fmt.Errorf("loading: %w", apperr.NotFound("Pocket"))},
		{name: "ValidationPassesThrough", err: apperr.Validation("amount must be greater than 0")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apperr.Aborted("create expense", tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}

			var ta *apperr.TransactionAbortError
			assert.Equal(t, tt.wantAbort, errors.As(got, &ta))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	err := apperr.NotFound("Expense")

	assert.EqualError(t, err, "Expense not found")
	assert.True(t, apperr.IsNotFound(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, apperr.IsValidation(err))
}
