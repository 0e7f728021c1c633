package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultService tags every line written by the pricing server.
const DefaultService = "transfer-pricing"

type Config struct {
	Level   string // debug, info, warn, error
	Pretty  bool   // console output instead of JSON
	Service string
}

// New builds the root logger and sets the global level. Packages derive
// their own logger from it with Component.
func New(cfg Config) zerolog.Logger {
	return newWithWriter(cfg, os.Stdout)
}

func newWithWriter(cfg Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.DurationFieldUnit = time.Millisecond

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	service := cfg.Service
	if service == "" {
		service = DefaultService
	}
	l := zerolog.New(out).With().Timestamp().Str("service", service).Logger()
	log.Logger = l
	return l
}

// Component tags l with the subsystem name, e.g. "ramadan_resolver".
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Nop is a disabled logger for tests and optional components.
func Nop() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}
