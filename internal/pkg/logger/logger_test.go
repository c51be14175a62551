package logger_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"odyssey_gateway/internal/config"
	"odyssey_gateway/internal/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	Convey("ParseLevel accepts the usual names", t, func() {
		for in, want := range map[string]zapcore.Level{
			"debug":   zapcore.DebugLevel,
			"INFO":    zapcore.InfoLevel,
			"":        zapcore.InfoLevel,
			"warning": zapcore.WarnLevel,
			"error":   zapcore.ErrorLevel,
		} {
			level, ok := logger.ParseLevel(in)
			So(ok, ShouldBeTrue)
			So(level, ShouldEqual, want)
		}
	})

	Convey("Unknown levels fall back to info", t, func() {
		level, ok := logger.ParseLevel("chatty")
		So(ok, ShouldBeFalse)
		So(level, ShouldEqual, zapcore.InfoLevel)
	})
}

func TestNew(t *testing.T) {
	Convey("Given a log file sink", t, func() {
		path := filepath.Join(t.TempDir(), "gateway.log")
		l, err := logger.New(config.LoggingConfig{Level: "warn", File: path})
		So(err, ShouldBeNil)

		l.Info("dropped")
		l.Warn("kept", zap.String("k", "v"))
		_ = l.Sync()

		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, "kept")
		So(string(data), ShouldNotContainSubstring, "dropped")
	})
}

func TestZapAdapter(t *testing.T) {
	Convey("Given an adapter over an observed core", t, func() {
		core, logs := observer.New(zapcore.DebugLevel)
		l := logger.NewZapAdapter(zap.New(core))

		l.With("component", "test").Info("hello", "key", "value")
		l.Debug("debugging")
		l.Error("failed", "error", "boom")

		So(logs.Len(), ShouldEqual, 3)
		entry := logs.All()[0]
		So(entry.Message, ShouldEqual, "hello")
		So(entry.ContextMap(), ShouldResemble, map[string]any{"component": "test", "key": "value"})
		So(logs.FilterLevelExact(zapcore.ErrorLevel).Len(), ShouldEqual, 1)
	})

	Convey("A nil zap logger is replaced by a no-op", t, func() {
		So(func() { logger.NewZapAdapter(nil).Info("ignored") }, ShouldNotPanic)
	})
}

func TestInstallSlog(t *testing.T) {
	Convey("slog records are routed into zap", t, func() {
		previous := slog.Default()
		defer slog.SetDefault(previous)

		core, logs := observer.New(zapcore.InfoLevel)
		logger.InstallSlog(zap.New(core))
		slog.InfoContext(context.Background(), "from slog", "n", 1)

		So(logs.Len(), ShouldEqual, 1)
		So(strings.HasSuffix(logs.All()[0].LoggerName, "slog"), ShouldBeTrue)
	})
}
