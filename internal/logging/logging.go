package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCLI  = "cli"
)

// Config selects the log level and format.
type Config struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// DefaultConfig logs at info level in text format.
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatText}
}

// Validate checks the level and format are known.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatCLI:
		return nil
	}
	return fmt.Errorf("unknown log format %q", c.Format)
}

// New builds a logger writing to w.
func New(cfg Config, w io.Writer) (*log.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := log.ParseLevel(strings.ToLower(cfg.Level))

	var handler log.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = json.New(w)
	case FormatCLI:
		handler = cli.New(w)
	default:
		handler = text.New(w)
	}

	return &log.Logger{Handler: handler, Level: level}, nil
}

// Init builds a stderr logger and installs its handler and level on the
// package level apex logger as well.
func Init(cfg Config) (*log.Logger, error) {
	logger, err := New(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	log.SetHandler(logger.Handler)
	log.SetLevel(logger.Level)
	return logger, nil
}
