package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = newConsole(os.Stderr, slog.LevelInfo, false)

func newConsole(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}))
}

// Setup logs to a rotated file, or to the console with debug output if debugMode is true.
func Setup(logFilePath string, debugMode bool) {
	if debugMode {
		logger = newConsole(os.Stderr, slog.LevelDebug, false)
		slog.SetDefault(logger)
		return
	}

	logger = slog.New(slog.NewTextHandler(&lumberjack.Logger{
		Filename:   logFilePath,
		MaxBackups: 3,
		MaxAge:     28, //days
	}, nil))
	slog.SetDefault(logger)
}

// SetOutput sends uncolored console formatted logs to w.
func SetOutput(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = newConsole(w, level, true)
}

// Discard drops all log output.
func Discard() {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Println(v ...interface{}) {
	logger.Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func Printf(format string, v ...interface{}) {
	logger.Info(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

func Fatal(v ...interface{}) {
	logger.Error(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
	os.Exit(1)
}

func Debug(msg string, args ...any) { logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }

// Since is a convenience attribute for timing a call.
func Since(start time.Time) slog.Attr {
	return slog.Duration("took", time.Since(start))
}
