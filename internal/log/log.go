package log

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultService tags relay log lines when the config leaves the name blank,
// so they stay identifiable next to the rest of the marketplace stack.
const DefaultService = "chat-service"

// Config holds logger settings, loaded from the log section of the config.
type Config struct {
	Level       string `mapstructure:"level"`
	Pretty      bool   `mapstructure:"pretty"`
	ServiceName string `mapstructure:"service_name"`
}

// global starts usable so packages can log before Init runs in main.
var global = zerolog.New(os.Stdout).With().Timestamp().Str(FieldService, DefaultService).Logger()

// New builds a logger from cfg. An unknown level string falls back to info
// rather than failing startup.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	service := cfg.ServiceName
	if service == "" {
		service = DefaultService
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Str(FieldService, service).Logger()
}

// Init replaces the global logger. Call once at startup, before the hub and
// handlers begin logging.
func Init(cfg Config) {
	global = New(cfg)
}

// L returns the global logger.
func L() zerolog.Logger {
	return global
}

type ctxKey struct{}

// WithLogger returns a context carrying a request-scoped logger.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Ctx returns the logger carried by ctx. Contexts from outside the request
// path, such as detached persist contexts, get the global logger.
func Ctx(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return global
}
