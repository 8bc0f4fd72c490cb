package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"ecessbot/clients/discord"
)

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name         string
		ready        bool
		expectedCode int
		expectedBody string
	}{
		{name: "Gateway ready", ready: true, expectedCode: http.StatusOK, expectedBody: `{"status":"ok","gateway":"ready"}`},
		{name: "Gateway down", ready: false, expectedCode: http.StatusServiceUnavailable, expectedBody: `{"status":"degraded","gateway":"not ready"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discordClient := new(discord.MockDiscordClient)
			discordClient.On("IsReady").Return(tt.ready)

			rec := httptest.NewRecorder()
			NewRouter(discordClient).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			discordClient.AssertExpectations(t)
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(new(discord.MockDiscordClient)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(new(discord.MockDiscordClient)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
