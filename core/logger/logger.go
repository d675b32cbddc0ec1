package logger

// Logger is the logging facade used across the engine and its adapters.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// Errorw logs an error with structured fields.
	Errorw(msg string, err error, fields map[string]any)
}

// Nop discards everything. It is handy as a default when no logger is wired.
type Nop struct{}

func (Nop) Debugf(string, ...any)                {}
func (Nop) Debugw(string, map[string]any)        {}
func (Nop) Infof(string, ...any)                 {}
func (Nop) Warnf(string, ...any)                 {}
func (Nop) Errorf(string, ...any)                {}
func (Nop) Errorw(string, error, map[string]any) {}
