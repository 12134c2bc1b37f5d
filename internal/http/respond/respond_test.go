package respond_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/http/respond"
)

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Validation",
			err:        apperr.Validation("Amount must be greater than 0"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Amount must be greater than 0"}`,
		},
		{
			name:       "NotFound",
			err:        apperr.NotFound("Pocket"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Pocket not found"}`,
		},
		{
			name:       "Aborted",
			err:        apperr.Aborted("create expense", errors.New("deadlock detected")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"The operation could not be completed, please try again"}`,
		},
		{
			name:       "Unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respond.Error(w, httptest.NewRequest(http.MethodGet, "/pockets", nil), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestID(t *testing.T) {
	_, err := respond.ID("not-a-uuid", "Need")
	assert.EqualError(t, err, "Need not found")
}
