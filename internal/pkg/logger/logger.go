package logger

import (
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"odyssey_gateway/internal/config"
)

// ParseLevel maps a config level string to a zap level. Unknown values fall back to info.
func ParseLevel(levelStr string) (zapcore.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return zapcore.DebugLevel, true
	case "", "INFO":
		return zapcore.InfoLevel, true
	case "WARN", "WARNING":
		return zapcore.WarnLevel, true
	case "ERROR":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// New builds a production zap logger using the level and optional file sink from cfg.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, ok := ParseLevel(cfg.Level)

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stdout"}
	if cfg.File != "" {
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, cfg.File)
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	if !ok {
		zapLogger.Warn("Invalid log level in config, defaulting to info", zap.String("level", cfg.Level))
	}
	return zapLogger, nil
}

// InstallSlog routes the standard slog default logger into zapLogger.
func InstallSlog(zapLogger *zap.Logger) {
	handler := zapslog.NewHandler(zapLogger.Core(), zapslog.WithName("slog"))
	slog.SetDefault(slog.New(handler))
}
