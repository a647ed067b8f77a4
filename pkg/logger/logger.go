package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type LogLevel int

const (
	ERROR LogLevel = iota
	WARN
	INFO
	DEBUG
)

var (
	currentLevel = getLogLevel()
	base         = newBase(os.Stderr)
)

const (
	APP        = "APP"
	ASSISTANT  = "ASSISTANT"
	CONFIG     = "CONFIG"
	HANDLER    = "HANDLER"
	MIDDLEWARE = "MIDDLEWARE"
	RENDER     = "RENDER"
	SERVICE    = "SERVICE"
	STORE      = "STORE"
)

func newBase(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetOutput redirects all namespace logging to w. Used by tests and the CLI.
func SetOutput(w io.Writer) {
	base = newBase(w)
}

func getLogLevel() LogLevel {
	level := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	switch level {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// ZerologLevel maps the configured LOG_LEVEL onto zerolog so the global
// logger used by services filters the same way.
func ZerologLevel() zerolog.Level {
	switch currentLevel {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func formatMessage(level, namespace, format string, v ...interface{}) string {
	msg := fmt.Sprintf(format, v...)
	return fmt.Sprintf("[%s] [%s] %s", level, namespace, msg)
}

func write(ev *zerolog.Event, level, namespace, format string, v ...interface{}) {
	ev.Str("namespace", namespace).Msg(formatMessage(level, namespace, format, v...))
}

func Debug(namespace, format string, v ...interface{}) {
	if currentLevel >= DEBUG {
		write(base.Debug(), "DEBUG", namespace, format, v...)
	}
}

func Info(namespace, format string, v ...interface{}) {
	if currentLevel >= INFO {
		write(base.Info(), "INFO", namespace, format, v...)
	}
}

func Warn(namespace, format string, v ...interface{}) {
	if currentLevel >= WARN {
		write(base.Warn(), "WARN", namespace, format, v...)
	}
}

func Error(namespace, format string, v ...interface{}) {
	if currentLevel >= ERROR {
		write(base.Error(), "ERROR", namespace, format, v...)
	}
}

// Fatal logs at error severity without exiting; callers decide how to stop.
func Fatal(namespace, format string, v ...interface{}) {
	if currentLevel >= ERROR {
		write(base.WithLevel(zerolog.FatalLevel), "FATAL", namespace, format, v...)
	}
}
