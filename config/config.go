// Package config holds the settings of the bolinas command. Settings are
// read from a YAML file on top of Default and may be overridden by flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config contains all settings of one bolinas run.
type Config struct {
	// Grammar selects and adjusts the grammar.
	Grammar GrammarConfig `yaml:"grammar"`

	// Parse contains search settings.
	Parse ParseConfig `yaml:"parse"`

	// Output selects how forests are written.
	Output OutputConfig `yaml:"output"`

	// Telemetry contains logging, tracing and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type GrammarConfig struct {
	Path string `yaml:"path"`
	// Start overrides the grammar's %start directive when set.
	Start string `yaml:"start"`
	// NodeLabels turns on node label matching even if the grammar file
	// does not ask for it.
	NodeLabels bool `yaml:"nodelabels"`
}

type ParseConfig struct {
	// Workers is the number of inputs parsed at the same time.
	Workers int `yaml:"workers" validate:"gte=1,lte=1024"`
	// Timeout bounds the parse of a single input; zero means no limit.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=json line tiburon cdec carmel"`
	// Prefix makes the command write one file per input (or, for carmel,
	// one charts and one norm file) instead of writing to stdout.
	Prefix string `yaml:"prefix"`
}

type TelemetryConfig struct {
	// Verbosity is the log level: 0 logs errors only, 4 and up everything.
	Verbosity int    `yaml:"verbosity" validate:"gte=0,lte=5"`
	LogFile   string `yaml:"log_file"`
	// OTLPEndpoint is the host:port of an OTLP/gRPC trace collector.
	OTLPEndpoint string `yaml:"otlp_endpoint" validate:"omitempty,hostname_port"`
	// MetricsAddr is the listen address of the Prometheus endpoint.
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Parse: ParseConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Format: "line",
		},
	}
}

// Load reads a YAML file over Default and validates the result. Unknown
// keys are an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML settings from r over Default and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings against their constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
