package logging

import "sync"

// Logger defines the leveled logging sink the library reports to.
// Every method receives a message and an optional structured metadata mapping;
// implementations have to tolerate a nil mapping.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

var (
	mtx    sync.RWMutex
	active Logger = Noop{}
)

// Get returns the process-wide active logger.
// As long as Set was never called, this is a no-op logger.
func Get() Logger {
	mtx.RLock()
	defer mtx.RUnlock()
	return active
}

// Set replaces the process-wide active logger.
// Passing nil restores the no-op default.
func Set(logger Logger) {
	mtx.Lock()
	defer mtx.Unlock()
	if logger == nil {
		logger = Noop{}
	}
	active = logger
}

// Noop implements the Logger interface by discarding every entry.
// It is the default active logger.
type Noop struct{}

var _ Logger = Noop{}

func (Noop) Debug(string, map[string]any) {}
func (Noop) Info(string, map[string]any)  {}
func (Noop) Warn(string, map[string]any)  {}
func (Noop) Error(string, map[string]any) {}
