package logging

import "github.com/rs/zerolog"

// Zerolog implements the Logger interface on top of a zerolog.Logger
type Zerolog struct {
	logger zerolog.Logger
}

var _ Logger = Zerolog{}

// NewZerolog creates a new zerolog-backed logger
func NewZerolog(logger zerolog.Logger) Zerolog {
	return Zerolog{logger: logger}
}

// Debug logs a debug-level entry
func (adapter Zerolog) Debug(msg string, fields map[string]any) {
	adapter.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs an info-level entry
func (adapter Zerolog) Info(msg string, fields map[string]any) {
	adapter.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs a warn-level entry
func (adapter Zerolog) Warn(msg string, fields map[string]any) {
	adapter.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs an error-level entry
func (adapter Zerolog) Error(msg string, fields map[string]any) {
	adapter.logger.Error().Fields(fields).Msg(msg)
}
