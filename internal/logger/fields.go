package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by every package that logs about a screening run.
const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	FieldRunID    = "run_id"
	FieldResume   = "resume"
)

// ForProvider tags log with the completion backend and its model.
func ForProvider(log *zap.Logger, provider, model string) *zap.Logger {
	return scoped(log, FieldProvider, provider, FieldModel, model)
}

// ForRun tags log with the batch id.
func ForRun(log *zap.Logger, runID string) *zap.Logger {
	return scoped(log, FieldRunID, runID)
}

// ForResume tags log with the batch id and the resume file name.
func ForResume(log *zap.Logger, runID, resume string) *zap.Logger {
	return scoped(log, FieldRunID, runID, FieldResume, resume)
}

// scoped adds kv as string fields. A pair whose key or value is blank is
// dropped, and a nil log becomes a no-op logger.
func scoped(log *zap.Logger, kv ...string) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}

	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, value := strings.TrimSpace(kv[i]), strings.TrimSpace(kv[i+1])
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}

	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}
