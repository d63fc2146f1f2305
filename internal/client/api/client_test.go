package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/zonesync/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

// TestClient_Health проверяет успешный health check
func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/health", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.HealthResponse{Status: "ok", Version: "1.2.3", ZoneVersion: 17})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, int64(17), resp.ZoneVersion)
}

// TestClient_Health_Errors проверяет обработку ошибок
func TestClient_Health_Errors(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedError string
		statusCode    int
	}{
		{
			name:          "error response",
			statusCode:    http.StatusInternalServerError,
			body:          `{"error":"database is locked"}`,
			expectedError: "server error (500): database is locked",
		},
		{
			name:          "unavailable storage",
			statusCode:    http.StatusServiceUnavailable,
			body:          `{"status":"unavailable","zone_version":0}`,
			expectedError: "request failed with status 503",
		},
		{
			name:          "plain text",
			statusCode:    http.StatusNotFound,
			body:          "404 page not found",
			expectedError: "request failed with status 404: 404 page not found",
		},
		{
			name:          "invalid json",
			statusCode:    http.StatusOK,
			body:          "invalid json {{{",
			expectedError: "failed to unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			resp, err := NewClient(server.URL).Health(context.Background())

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

// TestClient_ContextCancellation проверяет отмену запроса через контекст
func TestClient_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Имитируем долгий запрос
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	resp, err := NewClient(server.URL).Health(ctx)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "context deadline exceeded")
}

// TestClient_HTTPClientRedirect проверяет обработку редиректов
func TestClient_HTTPClientRedirect(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if redirectCount < 3 {
			redirectCount++
			w.Header().Set("Location", "/api/v1/health")
			w.WriteHeader(http.StatusFound)
			return
		}
		_ = json.NewEncoder(w).Encode(api.HealthResponse{Status: "ok"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, redirectCount)
}

func TestClient_WebsocketURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{name: "http", baseURL: "http://localhost:8080", want: "ws://localhost:8080/ws"},
		{name: "https with path", baseURL: "https://zones.example.com/game/", want: "wss://zones.example.com/game/ws"},
		{name: "already ws", baseURL: "ws://127.0.0.1:9000", want: "ws://127.0.0.1:9000/ws"},
		{name: "unsupported scheme", baseURL: "ftp://localhost", wantErr: true},
		{name: "missing host", baseURL: "http://", wantErr: true},
		{name: "no scheme", baseURL: "localhost:8080", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewClient(tt.baseURL).WebsocketURL()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
