package logging

// Logger is the logging contract consumed by every package in this module.
// It allows users to plug in their own logger (zap, logrus, etc.) without
// this library taking a hard dependency on any one of them.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Noop is a no-operation logger that discards all log messages.
type Noop struct{}

func (Noop) Debug(msg string, keysAndValues ...interface{}) {}
func (Noop) Info(msg string, keysAndValues ...interface{})  {}
func (Noop) Warn(msg string, keysAndValues ...interface{})  {}
func (Noop) Error(msg string, keysAndValues ...interface{}) {}
