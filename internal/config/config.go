package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"toyc/internal/codegen"
	"toyc/internal/engine"
)

// DefaultFile is the configuration file looked up in the working directory
const DefaultFile = "toyc.yaml"

// Error policy names accepted in the errors key
const (
	PolicyContinue = "continue"
	PolicyAbort    = "abort"
)

// Config holds the compiler settings read from toyc.yaml
type Config struct {
	// Errors selects what happens after an error: "continue" or "abort"
	Errors string `yaml:"errors"`

	// StrictTypes turns unknown type names into errors
	StrictTypes bool `yaml:"strict_types"`

	// Runtime declares echo and echod in every module
	Runtime bool `yaml:"runtime"`

	// PrintIR prints the module after generation
	PrintIR bool `yaml:"print_ir"`

	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig configures program execution
type EngineConfig struct {
	MaxCallDepth int `yaml:"max_call_depth"`
}

// LogConfig configures commonlog
type LogConfig struct {
	Verbosity int    `yaml:"verbosity"`
	File      string `yaml:"file,omitempty"`
}

// Default returns the settings used when no file is present
func Default() *Config {
	return &Config{
		Errors:  PolicyContinue,
		Runtime: true,
		Engine:  EngineConfig{MaxCallDepth: engine.DefaultMaxCallDepth},
	}
}

// Load reads a configuration file. A missing file at the default location is
// not an error and yields the defaults; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes YAML configuration over the defaults. Unknown keys are
// rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every value is in range
func (c *Config) Validate() error {
	switch c.Errors {
	case PolicyContinue, PolicyAbort:
	default:
		return fmt.Errorf("invalid errors policy %q: expected %q or %q", c.Errors, PolicyContinue, PolicyAbort)
	}
	if c.Engine.MaxCallDepth <= 0 {
		return fmt.Errorf("engine.max_call_depth must be positive, got %d", c.Engine.MaxCallDepth)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity must not be negative, got %d", c.Log.Verbosity)
	}
	return nil
}

// Policy returns the code generator error policy
func (c *Config) Policy() codegen.Policy {
	if c.Errors == PolicyAbort {
		return codegen.AbortOnError
	}
	return codegen.ContinueOnError
}

// CodegenOptions builds compilation unit options, printing the module to out
// when PrintIR is set
func (c *Config) CodegenOptions(out io.Writer) codegen.Options {
	opts := codegen.Options{
		Policy:      c.Policy(),
		StrictTypes: c.StrictTypes,
		Runtime:     c.Runtime,
	}
	if c.PrintIR {
		opts.Output = out
	}
	return opts
}

// EngineOptions builds execution engine options writing program output to
// stdout
func (c *Config) EngineOptions(stdout io.Writer) []engine.Option {
	return []engine.Option{
		engine.WithStdout(stdout),
		engine.WithMaxCallDepth(c.Engine.MaxCallDepth),
	}
}
