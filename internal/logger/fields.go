package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldPassID identifies one evaluation pass across all of its log entries.
	FieldPassID = "pass_id"
	// FieldScholarshipID is the catalog id of the offer a log entry is about.
	FieldScholarshipID = "scholarship_id"
	// FieldCatalog is the source of the catalog in use.
	FieldCatalog = "catalog"
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the provided fields to the logger, defaulting to a
// no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// PassFields describes an evaluation pass: its id and the catalog it ran against.
func PassFields(passID, catalog string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPassID, Value: passID},
		StringField{Key: FieldCatalog, Value: catalog},
	)
}

// WithPass attaches the pass fields to the provided logger.
func WithPass(logger *zap.Logger, passID, catalog string) *zap.Logger {
	return WithFields(logger, PassFields(passID, catalog)...)
}

// CommonFields returns standard zap fields that describe the AI provider and model.
// Empty values are ignored to keep log entries compact when information is missing.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the common AI fields to the provided logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}
