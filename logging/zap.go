package logging

import "go.uber.org/zap"

// Ensure ZapLogger implements Logger
var _ Logger = (*ZapLogger)(nil)

// ZapLogger adapts a zap.SugaredLogger to the Logger interface.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: logger.Sugar()}
}

// NewDevelopmentLogger builds a human-readable logger for local runs. It
// falls back to Noop-like silence only if zap fails to construct, which in
// practice does not happen with the development config.
func NewDevelopmentLogger() Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return Noop{}
	}
	return NewZapLogger(logger)
}

func (z *ZapLogger) Debug(msg string, keysAndValues ...interface{}) {
	z.sugar.Debugw(msg, keysAndValues...)
}

func (z *ZapLogger) Info(msg string, keysAndValues ...interface{}) {
	z.sugar.Infow(msg, keysAndValues...)
}

func (z *ZapLogger) Warn(msg string, keysAndValues ...interface{}) {
	z.sugar.Warnw(msg, keysAndValues...)
}

func (z *ZapLogger) Error(msg string, keysAndValues ...interface{}) {
	z.sugar.Errorw(msg, keysAndValues...)
}
