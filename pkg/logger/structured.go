package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog = zerolog.New(os.Stdout).With().Timestamp().Str("service", "dischan").Logger()

// Init sets zerolog globals. Until InitStructured runs the package logger
// writes JSON to stdout.
func Init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// InitStructured initializes the structured zerolog logger
func InitStructured(env string) {
	var w io.Writer

	switch env {
	case "development", "dev", "local":
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	default:
		w = os.Stdout
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", "dischan").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// SetOutput redirects the logger, used by tests to capture or silence output
func SetOutput(w io.Writer) {
	zlog = zlog.Output(w)
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// Info logs a printf style message at info level
func Info(format string, args ...interface{}) {
	zlog.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs a printf style message at warn level
func Warn(format string, args ...interface{}) {
	zlog.Warn().Msg(fmt.Sprintf(format, args...))
}

// WithRequestID returns a logger with request_id field
func WithRequestID(requestID string) zerolog.Logger {
	return zlog.With().Str("request_id", requestID).Logger()
}

// WithWallet returns a logger with wallet field
func WithWallet(wallet string) zerolog.Logger {
	return zlog.With().Str("wallet", wallet).Logger()
}
