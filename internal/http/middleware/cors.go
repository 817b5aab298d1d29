package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/nordcargo/forwarding-api/internal/config"
)

// CORS builds the cross-origin policy from config. Behavior depends on
// the configured origins and the environment:
//   - explicit origins: only those are allowed
//   - a "*" entry: any origin is allowed (warned about outside dev)
//   - no origins in dev/local: any origin is allowed
//   - no origins in production: every cross-origin request is denied
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	devLike := environment == "development" || environment == "local" || environment == ""

	switch {
	case slices.Contains(cfg.AllowedOrigins, "*"):
		if !devLike {
			logger.Warn("CORS wildcard origin outside development",
				zap.String("environment", environment))
		}
		opts.AllowOriginFunc = allowAnyOrigin

	case len(cfg.AllowedOrigins) > 0:
		opts.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS restricted to configured origins",
			zap.Strings("origins", cfg.AllowedOrigins))

	case devLike:
		opts.AllowOriginFunc = allowAnyOrigin
		logger.Info("CORS allowing all origins in development mode")

	default:
		// The chi cors package treats an empty AllowedOrigins list as
		// "*", so denial has to go through AllowOriginFunc.
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("CORS has no allowed origins, denying all cross-origin requests",
			zap.String("environment", environment))
	}

	return cors.Handler(opts)
}

func allowAnyOrigin(r *http.Request, origin string) bool {
	return origin != ""
}
