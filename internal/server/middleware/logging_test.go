package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		handler        http.HandlerFunc
		name           string
		method         string
		path           string
		wantLevel      string
		expectedStatus int
	}{
		{
			name:   "health check",
			method: http.MethodGet,
			path:   "/api/v1/health",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			},
			expectedStatus: http.StatusOK,
			wantLevel:      "INFO",
		},
		{
			name:   "plain GET on websocket endpoint",
			method: http.MethodGet,
			path:   "/ws",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "Bad Request", http.StatusBadRequest)
			},
			expectedStatus: http.StatusBadRequest,
			wantLevel:      "WARN",
		},
		{
			name:   "storage failure",
			method: http.MethodGet,
			path:   "/api/v1/health",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
			wantLevel:      "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf strings.Builder
			logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))

			handler := LoggingMiddleware(logger)(tt.handler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.RemoteAddr = "192.168.1.1:12345"
			req.Header.Set("User-Agent", "TestAgent/1.0")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			logOutput := logBuf.String()
			assert.Contains(t, logOutput, "HTTP request")
			assert.Contains(t, logOutput, tt.path)
			assert.Contains(t, logOutput, "192.168.1.1:12345")
			assert.Contains(t, logOutput, "TestAgent/1.0")
			assert.Contains(t, logOutput, "level="+tt.wantLevel)
			assert.Contains(t, logOutput, "websocket=false")
		})
	}
}

// safeBuffer собирает логи, которые пишет горутина сервера
type safeBuffer struct {
	b  strings.Builder
	mu sync.Mutex
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestLoggingMiddleware_WebsocketUpgrade(t *testing.T) {
	var logBuf safeBuffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	})))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err, "upgrade must pass through the logging wrapper")
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	assert.Eventually(t, func() bool {
		out := logBuf.String()
		return strings.Contains(out, "websocket=true") && strings.Contains(out, "status=101")
	}, time.Second, 10*time.Millisecond)
}

func TestResponseWriter_HijackUnsupported(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

	_, _, err := rw.Hijack()
	require.Error(t, err)
	assert.False(t, rw.hijacked)
}

func TestLoggingWithSkip(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	handler := LoggingWithSkip(logger, []string{"/api/v1/health"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	t.Run("skipped path is not logged", func(t *testing.T) {
		logBuf.Reset()
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, logBuf.String())
	})

	t.Run("other paths are logged", func(t *testing.T) {
		logBuf.Reset()
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))

		assert.Contains(t, logBuf.String(), "HTTP request")
		assert.Contains(t, logBuf.String(), "/ws")
	})
}

func TestResponseWriter_CapturesStatusAndBytes(t *testing.T) {
	tests := []struct {
		name           string
		writeHeader    bool
		statusCode     int
		expectedStatus int
	}{
		{name: "explicit 201", writeHeader: true, statusCode: http.StatusCreated, expectedStatus: http.StatusCreated},
		{name: "explicit 404", writeHeader: true, statusCode: http.StatusNotFound, expectedStatus: http.StatusNotFound},
		{name: "default 200", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

			if tt.writeHeader {
				rw.WriteHeader(tt.statusCode)
			}
			n, err := rw.Write([]byte("Hello, World!"))
			require.NoError(t, err)

			assert.Equal(t, tt.expectedStatus, rw.statusCode)
			assert.Equal(t, 13, n)
			assert.Equal(t, int64(13), rw.written)
		})
	}
}
