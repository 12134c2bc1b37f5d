package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocketly/internal/insights/gemini"
)

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"insights\":"},{"text":"[]}"}]}}]}`))
	}))
	defer srv.Close()

	c := gemini.New(gemini.Config{APIKey: "secret", Model: "gemini-2.5-flash", BaseURL: srv.URL})

	got, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"insights":[]}`, got)
}

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "BadKey", status: http.StatusForbidden, body: `{"error":"API key not valid"}`, wantErr: "gemini: status 403"},
		{name: "NoCandidates", status: http.StatusOK, body: `{"candidates":[]}`, wantErr: gemini.ErrEmptyResponse.Error()},
		{name: "Garbage", status: http.StatusOK, body: `not json`, wantErr: "gemini: decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := gemini.New(gemini.Config{Model: "m", BaseURL: srv.URL}).Generate(context.Background(), "p")
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
