package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocketly/internal/auth"
)

func TestMiddleware(t *testing.T) {
	a := auth.New("s3cret", "pocketly")
	user := uuid.New()

	valid, err := a.NewToken(user, "ada@example.com", time.Hour)
	require.NoError(t, err)

	// a non-positive ttl falls back to a day
	defaulted, err := a.NewToken(user, "", -time.Hour)
	require.NoError(t, err)
	_, err = a.Parse(defaulted)
	require.NoError(t, err)

	foreign, err := auth.New("other", "pocketly").NewToken(user, "", time.Hour)
	require.NoError(t, err)

	wrongIssuer, err := auth.New("s3cret", "someone-else").NewToken(user, "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "Valid", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "LowercaseScheme", header: "bearer " + valid, wantStatus: http.StatusOK},
		{name: "Missing", header: "", wantStatus: http.StatusUnauthorized},
		{name: "NotBearer", header: "Basic " + valid, wantStatus: http.StatusUnauthorized},
		{name: "WrongSecret", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
		{name: "WrongIssuer", header: "Bearer " + wrongIssuer, wantStatus: http.StatusUnauthorized},
		{name: "Garbage", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uuid.UUID

			h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := auth.UserID(r.Context())
				require.True(t, ok)

				got = id

				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/pockets", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, user, got)
			} else {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestParse_ExpiredToken(t *testing.T) {
	a := auth.New("s3cret", "")

	// one nanosecond of validity is gone by the time it is parsed
	token, err := a.NewToken(uuid.New(), "", time.Nanosecond)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = a.Parse(token)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}
