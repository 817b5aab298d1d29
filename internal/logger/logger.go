package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nordcargo/forwarding-api/internal/config"
)

// NewLogger builds the application logger. Production (or an explicit
// json format) gets the zap production encoder; everything else gets
// colored console output for local work. Every entry carries the app
// name and environment so log aggregation can tell deployments apart.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	base := zap.NewDevelopmentConfig()
	base.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if cfg.Format == "json" || appCfg.Environment == "production" {
		base = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	base.Level = zap.NewAtomicLevelAt(level)
	base.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	log, err := base.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// WithRequest scopes a logger to a single HTTP request.
func WithRequest(log *zap.Logger, method, path, requestID string) *zap.Logger {
	return log.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}

// WithUser scopes a logger to the acting user.
func WithUser(log *zap.Logger, userID, displayName string) *zap.Logger {
	return log.With(
		zap.String("user_id", userID),
		zap.String("user_name", displayName),
	)
}
