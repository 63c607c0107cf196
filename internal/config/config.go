package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/vigil/internal/engine"
)

//go:embed schema.cue
var schemaCUE string

// Config is the decoded engine configuration.
type Config struct {
	Mode      string `json:"mode"`
	WarnLimit int    `json:"warn_limit"`
	AuditDB   string `json:"audit_db"`
	LogLevel  string `json:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Mode:     "full",
		LogLevel: "warn",
	}
}

// Load reads and validates a CUE configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(string(data), path)
}

// Parse validates CUE source against the embedded schema and decodes it.
// The filename is used only for error positions.
func Parse(src, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling config schema: %w", err)
	}

	value := ctx.CompileString(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compiling config: %w", err)
	}

	// Checked on the user's value: the schema supplies defaults for every
	// field, so after unification "config" always exists.
	if !value.LookupPath(cue.ParsePath("config")).Exists() {
		return nil, fmt.Errorf("validating config: missing top-level config struct")
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg := &Config{}
	configVal := unified.LookupPath(cue.ParsePath("config"))
	if err := configVal.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// ParseLevel converts the configured log level to a slog.Level.
func (c *Config) ParseLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}

// EngineOptions converts the configuration into engine options.
// The sink is wired separately by the caller.
func (c *Config) EngineOptions() ([]engine.Option, error) {
	mode, err := engine.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithMode(mode),
		engine.WithWarnLimit(c.WarnLimit),
	}, nil
}
