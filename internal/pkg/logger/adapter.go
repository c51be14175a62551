package logger

import (
	"go.uber.org/zap"

	"odyssey_gateway/internal/app/port"
)

// zapAdapter реализует интерфейс port.Logger поверх zap.SugaredLogger.
type zapAdapter struct {
	sugar *zap.SugaredLogger
}

// NewZapAdapter wraps zapLogger so it can be passed to components expecting port.Logger.
func NewZapAdapter(zapLogger *zap.Logger) port.Logger {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &zapAdapter{sugar: zapLogger.Sugar()}
}

// Info логирует информационное сообщение.
func (a *zapAdapter) Info(msg string, args ...any) {
	a.sugar.Infow(msg, args...)
}

// Debug логирует отладочное сообщение.
func (a *zapAdapter) Debug(msg string, args ...any) {
	a.sugar.Debugw(msg, args...)
}

// Warn логирует предупреждающее сообщение.
func (a *zapAdapter) Warn(msg string, args ...any) {
	a.sugar.Warnw(msg, args...)
}

// Error логирует сообщение об ошибке.
func (a *zapAdapter) Error(msg string, args ...any) {
	a.sugar.Errorw(msg, args...)
}

// With returns a logger that always includes args.
func (a *zapAdapter) With(args ...any) port.Logger {
	return &zapAdapter{sugar: a.sugar.With(args...)}
}
