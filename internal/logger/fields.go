package logger

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	FieldProvider   = "ai_provider"
	FieldModel      = "ai_model"
	FieldSessionID  = "session_id"
	FieldGeneration = "generation"
	FieldErrorKind  = "error_kind"
)

// WithFields attaches fields to logger, falling back to a no-op logger
// when logger is nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithProvider tags logger with the AI provider and model. Empty values are
// skipped.
func WithProvider(logger *zap.Logger, provider, model string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if provider = strings.TrimSpace(provider); provider != "" {
		fields = append(fields, zap.String(FieldProvider, provider))
	}
	if model = strings.TrimSpace(model); model != "" {
		fields = append(fields, zap.String(FieldModel, model))
	}
	return WithFields(logger, fields...)
}

// WithSession tags logger with a workflow session ID.
func WithSession(logger *zap.Logger, id uuid.UUID) *zap.Logger {
	return WithFields(logger, zap.String(FieldSessionID, id.String()))
}

// ErrorKind is the zap field used to tell inference failures apart.
func ErrorKind(kind string) zap.Field {
	return zap.String(FieldErrorKind, kind)
}
