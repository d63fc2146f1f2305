package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/zonesync/pkg/api"
)

// HandshakeLimiter ограничивает частоту websocket рукопожатий с одного адреса.
// Клиенты переподключаются с backoff, но после рестарта сервера все они
// приходят одновременно.
type HandshakeLimiter struct {
	buckets map[string]*bucket
	logger  *slog.Logger
	stopC   chan struct{}
	now     func() time.Time
	burst   int
	window  time.Duration
	mu      sync.Mutex
	stop    sync.Once
}

// bucket окно одного адреса
type bucket struct {
	windowStart time.Time
	left        int
}

// NewHandshakeLimiter allows burst handshakes per address per window.
func NewHandshakeLimiter(burst int, window time.Duration, logger *slog.Logger) *HandshakeLimiter {
	return newHandshakeLimiter(burst, window, logger, time.Now)
}

func newHandshakeLimiter(burst int, window time.Duration, logger *slog.Logger, now func() time.Time) *HandshakeLimiter {
	l := &HandshakeLimiter{
		buckets: make(map[string]*bucket),
		logger:  logger,
		stopC:   make(chan struct{}),
		now:     now,
		burst:   burst,
		window:  window,
	}
	go l.sweep()
	return l
}

// sweep периодически удаляет простаивающие адреса
func (l *HandshakeLimiter) sweep() {
	ticker := time.NewTicker(l.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.dropIdle()
		case <-l.stopC:
			return
		}
	}
}

func (l *HandshakeLimiter) dropIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for addr, b := range l.buckets {
		if now.Sub(b.windowStart) > l.window*2 {
			delete(l.buckets, addr)
		}
	}
}

// Stop terminates the sweeper. Safe to call more than once.
func (l *HandshakeLimiter) Stop() {
	l.stop.Do(func() { close(l.stopC) })
}

// Allow consumes one handshake for addr. When the window is exhausted it
// returns false and the time until the window resets.
func (l *HandshakeLimiter) Allow(addr string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[addr]
	if !ok || now.Sub(b.windowStart) >= l.window {
		b = &bucket{windowStart: now, left: l.burst}
		l.buckets[addr] = b
	}

	if b.left > 0 {
		b.left--
		return true, 0
	}
	return false, l.window - now.Sub(b.windowStart)
}

// Middleware отклоняет рукопожатия сверх лимита ответом 429 с Retry-After
func (l *HandshakeLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := clientAddr(r)
		ok, retry := l.Allow(addr)
		if !ok {
			l.logger.Warn("Handshake rate limit exceeded",
				"addr", addr,
				"path", r.URL.Path,
				"retry_after", retry,
			)

			secs := max(1, int((retry+time.Second-1)/time.Second))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{
				Error: "too many connection attempts",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientAddr адрес клиента без порта, с учетом прокси
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
