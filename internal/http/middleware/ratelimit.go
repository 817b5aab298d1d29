package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/config"
)

// RateLimiter throttles requests per client. Unauthenticated traffic
// is keyed by IP; authenticated traffic is keyed by user id with its
// own, usually higher, budget. Whitelisted IPs and paths bypass both.
type RateLimiter struct {
	cfg    *config.RateLimitConfig
	logger *zap.Logger

	byIP   func(http.Handler) http.Handler
	byUser func(http.Handler) http.Handler

	exemptIPs   map[string]bool
	exemptPaths map[string]bool
}

func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:         cfg,
		logger:      logger,
		exemptIPs:   make(map[string]bool, len(cfg.WhitelistIPs)),
		exemptPaths: make(map[string]bool, len(cfg.WhitelistPaths)),
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.exemptIPs[ip] = true
	}
	for _, p := range cfg.WhitelistPaths {
		rl.exemptPaths[p] = true
	}

	rl.byIP = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rl.limitExceeded),
	)
	rl.byUser = httprate.Limit(
		cfg.RequestsPerMinuteAuth,
		time.Minute,
		httprate.WithKeyFuncs(rl.keyByUserOrIP),
		httprate.WithLimitHandler(rl.limitExceeded),
	)

	logger.Info("Rate limiter initialized",
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Int("requests_per_minute_auth", cfg.RequestsPerMinuteAuth),
		zap.Int("burst_size", cfg.BurstSize),
		zap.Strings("whitelist_ips", cfg.WhitelistIPs),
		zap.Strings("whitelist_paths", cfg.WhitelistPaths),
	)
	return rl
}

// Limit applies the user budget when a user context is present and the
// IP budget otherwise. Meant to run after authentication.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		if userCtx, ok := auth.FromContext(r.Context()); ok && userCtx != nil {
			rl.byUser(next).ServeHTTP(w, r)
			return
		}
		rl.byIP(next).ServeHTTP(w, r)
	})
}

// LimitByIP applies the IP budget unconditionally. Meant for routes
// mounted before authentication runs.
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		rl.byIP(next).ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) exempt(r *http.Request) bool {
	return rl.pathWhitelisted(r.URL.Path) || rl.exemptIPs[clientIP(r)]
}

func (rl *RateLimiter) keyByUserOrIP(r *http.Request) (string, error) {
	if userCtx, ok := auth.FromContext(r.Context()); ok && userCtx != nil {
		return "user:" + userCtx.UserID, nil
	}
	return "ip:" + clientIP(r), nil
}

// pathWhitelisted matches exact entries plus "/*"-suffixed prefixes,
// so "/health/*" covers "/health/db" and friends.
func (rl *RateLimiter) pathWhitelisted(path string) bool {
	if rl.exemptPaths[path] {
		return true
	}
	for p := range rl.exemptPaths {
		if strings.HasSuffix(p, "/*") && strings.HasPrefix(path, strings.TrimSuffix(p, "/*")) {
			return true
		}
	}
	return false
}

// clientIP resolves the originating address, trusting proxy headers
// first: X-Forwarded-For (leftmost entry), then X-Real-IP, then the
// connection's RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiter) limitExceeded(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if userCtx, ok := auth.FromContext(r.Context()); ok && userCtx != nil {
		userID = userCtx.UserID
	}
	rl.logger.Warn("rate limit exceeded",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("client_ip", clientIP(r)),
		zap.String("user_id", userID),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded","message":"Too many requests. Please try again later."}`))
}
