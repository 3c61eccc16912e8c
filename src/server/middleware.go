package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phantom-spire/core-studio/src/config"
	"github.com/phantom-spire/core-studio/src/logging"
	"github.com/phantom-spire/core-studio/src/model"
)

// Middleware wraps an http.Handler to add common functionality.
type Middleware struct {
	config     *config.Config
	logManager *logging.Manager
	metrics    *Metrics
}

// NewMiddleware creates a new middleware instance.
func NewMiddleware(cfg *config.Config, logMgr *logging.Manager, metrics *Metrics) *Middleware {
	if logMgr == nil {
		logMgr = logging.NewDiscard()
	}
	return &Middleware{config: cfg, logManager: logMgr, metrics: metrics}
}

// Chain chains multiple middleware handlers together.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// SecurityHeaders adds security headers to all responses.
func (m *Middleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// CORS handles Cross-Origin Resource Sharing.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cors := m.config.Server.CORS

		if !cors.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, allowed := range cors.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(cors.AllowedMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(cors.AllowedHeaders, ", "))
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimiter implements token bucket rate limiting per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	burst    int
	enabled  bool
	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     cfg.RequestsPerMinute,
		burst:    cfg.BurstSize,
		enabled:  cfg.Enabled,
		stop:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > 10*time.Minute {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow checks if a request from ip is allowed.
func (rl *RateLimiter) Allow(ip string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:   float64(rl.burst - 1),
			lastSeen: time.Now(),
		}
		return true
	}

	elapsed := time.Since(v.lastSeen).Seconds()
	v.tokens += elapsed * float64(rl.rate) / 60.0
	if v.tokens > float64(rl.burst) {
		v.tokens = float64(rl.burst)
	}
	v.lastSeen = time.Now()

	if v.tokens >= 1 {
		v.tokens--
		return true
	}
	return false
}

// RateLimit middleware applies rate limiting.
func (m *Middleware) RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r, m.config.Server.TrustedProxies)

			for _, whitelisted := range m.config.Server.RateLimit.Whitelist {
				if ip == whitelisted || strings.HasPrefix(ip, whitelisted) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if !limiter.Allow(ip) {
				m.logManager.LogRateLimited(ip, r.URL.Path)
				if m.metrics != nil {
					m.metrics.RecordRateLimitHit()
				}
				w.Header().Set("Retry-After", "60")
				writeEnvelope(w, http.StatusTooManyRequests,
					model.NewError(model.ErrCodeRateLimit, "rate limit exceeded", ""))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the real client IP from the request. Forwarding
// headers are honored only when the connection comes from a trusted
// proxy.
func getClientIP(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	trusted := false
	for _, proxy := range trustedProxies {
		if remoteIP == proxy || strings.HasPrefix(remoteIP, proxy) {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}
	return remoteIP
}

// responseWriter wraps http.ResponseWriter to capture status code and
// bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Logger middleware logs all requests to the access log.
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		m.logManager.LogRequest(r, wrapped.statusCode, wrapped.bytesWritten,
			time.Since(start), r.Header.Get("X-Request-ID"))
		if m.metrics != nil {
			m.metrics.RecordRequest(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
		}
	})
}

// Recovery middleware recovers from handler panics and answers with
// the uniform error envelope.
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				m.logManager.Server().Error("panic recovered",
					"panic", rec, "path", r.URL.Path)
				writeEnvelope(w, http.StatusInternalServerError,
					model.NewError(model.ErrCodeInternal, "internal server error", ""))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestID middleware assigns each request a UUID, honoring a valid
// incoming X-Request-ID.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := ""
		if incoming := r.Header.Get("X-Request-ID"); incoming != "" {
			if _, err := uuid.Parse(incoming); err == nil {
				requestID = incoming
			}
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}

		r.Header.Set("X-Request-ID", requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func writeEnvelope(w http.ResponseWriter, status int, resp *model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
