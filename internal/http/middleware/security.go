package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nordcargo/forwarding-api/internal/config"
)

// SecurityHeaders sets browser hardening headers on every response and
// strips headers that leak server details. Each header is emitted only
// when configured, so deployments can relax individual policies.
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			if cfg.ContentTypeNosniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			setIfConfigured(h, "X-Frame-Options", cfg.FrameOptions)
			setIfConfigured(h, "X-XSS-Protection", cfg.XSSProtection)
			setIfConfigured(h, "Content-Security-Policy", cfg.ContentSecurityPolicy)
			setIfConfigured(h, "Referrer-Policy", cfg.ReferrerPolicy)
			setIfConfigured(h, "Permissions-Policy", cfg.PermissionsPolicy)

			if cfg.EnableHSTS {
				h.Set("Strict-Transport-Security", hstsValue(cfg))
			}

			h.Del("X-Powered-By")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}

func setIfConfigured(h http.Header, name, value string) {
	if value != "" {
		h.Set(name, value)
	}
}

func hstsValue(cfg *config.SecurityConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "max-age=%d", cfg.HSTSMaxAge)
	if cfg.HSTSIncludeSubdomains {
		b.WriteString("; includeSubDomains")
	}
	if cfg.HSTSPreload {
		b.WriteString("; preload")
	}
	return b.String()
}
