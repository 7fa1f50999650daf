package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldSession  = "session"
	FieldPosition = "position"
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
)

// WithFields attaches fields to logger, substituting a no-op logger for nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// SessionField logs only a prefix of the session id.
func SessionField(sessionID string) zap.Field {
	sessionID = strings.TrimSpace(sessionID)
	if len(sessionID) > 8 {
		sessionID = sessionID[:8]
	}
	return zap.String(FieldSession, sessionID)
}

// AIFields describe the analyzer backend; empty values are dropped.
func AIFields(provider, model string) []zap.Field {
	var out []zap.Field
	if p := strings.TrimSpace(provider); p != "" {
		out = append(out, zap.String(FieldProvider, p))
	}
	if m := strings.TrimSpace(model); m != "" {
		out = append(out, zap.String(FieldModel, m))
	}
	return out
}
