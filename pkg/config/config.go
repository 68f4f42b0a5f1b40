package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/logging"
)

// DefaultFilename is the config file consulted when none is named explicitly.
const DefaultFilename = "config.yaml"

const (
	DefaultNoidPath = "noid"
	DefaultDBPath   = "."
	DefaultLogLevel = "INFO"
)

// Config is the whole of noidwrap's configuration.
// It is loaded once at startup and treated as read-only afterwards.
type Config struct {
	Noid    NoidConfig    `yaml:"NOID"`
	Logging LoggingConfig `yaml:"Logging"`
}

type NoidConfig struct {
	NoidPath string `yaml:"noid_path"`
	DBPath   string `yaml:"db_path"`

	// Template is the minting template handed to dbcreate, e.g. "r0.zek".
	Template string `yaml:"template,omitempty"`
	// Term, NAAN, NAA and SubNAA are the optional trailing dbcreate arguments.
	Term   string `yaml:"term,omitempty"`
	NAAN   string `yaml:"naan,omitempty"`
	NAA    string `yaml:"naa,omitempty"`
	SubNAA string `yaml:"subnaa,omitempty"`

	// Timeout bounds each invocation of noid. Zero means no limit.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Noid: NoidConfig{
			NoidPath: DefaultNoidPath,
			DBPath:   DefaultDBPath,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads the YAML config file at path from fsys, fills in defaults, and validates it.
// Environment overrides are not applied; see ApplyEnv.
//
// Errors:
//
//   - noidwrap-error-config -- when the file is missing, unreadable, malformed, or fails validation
func Load(fsys fs.FS, path string) (Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Config{}, noidapi.ErrorConfig(path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, noidapi.ErrorConfig(path, err)
	}
	return cfg, nil
}

// LoadFile is Load against the host filesystem.
//
// Errors:
//
//   - noidwrap-error-config -- when the file is missing, unreadable, malformed, or fails validation
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, noidapi.ErrorConfig(path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, noidapi.ErrorConfig(path, err)
	}
	return cfg, nil
}

// Parse decodes config file content. Unknown keys are rejected.
// An empty document yields the defaults.
//
// Errors:
//
//   - noidwrap-error-config -- when the content is malformed or fails validation
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fillDefaults restores defaults for keys that were present but left empty.
func (cfg *Config) fillDefaults() {
	if cfg.Noid.NoidPath == "" {
		cfg.Noid.NoidPath = DefaultNoidPath
	}
	if cfg.Noid.DBPath == "" {
		cfg.Noid.DBPath = DefaultDBPath
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
}

// Validate checks the values that can be checked without running noid.
//
// Errors:
//
//   - noidwrap-error-config -- when a value is invalid
func (cfg Config) Validate() error {
	if cfg.Noid.NoidPath == "" {
		return noidapi.ErrorConfigInvalid("NOID.noid_path", "must not be empty")
	}
	if cfg.Noid.DBPath == "" {
		return noidapi.ErrorConfigInvalid("NOID.db_path", "must not be empty")
	}
	if cfg.Noid.Timeout < 0 {
		return noidapi.ErrorConfigInvalid("NOID.timeout", "must not be negative")
	}
	switch cfg.Noid.Term {
	case "", "short", "medium", "long", "-":
	default:
		return noidapi.ErrorConfigInvalid("NOID.term", fmt.Sprintf("%q is not one of short, medium, long", cfg.Noid.Term))
	}
	if cfg.Noid.NAAN != "" && (cfg.Noid.NAA == "" || cfg.Noid.SubNAA == "") {
		return noidapi.ErrorConfigInvalid("NOID.naan", "naan requires naa and subnaa")
	}
	if cfg.Noid.NAAN != "" && cfg.Noid.Term == "" {
		return noidapi.ErrorConfigInvalid("NOID.naan", "naan requires term")
	}
	if _, ok := logging.ParseLevel(cfg.Logging.Level); !ok {
		return noidapi.ErrorConfigInvalid("Logging.level", fmt.Sprintf("unknown level %q", cfg.Logging.Level))
	}
	return nil
}

// LogLevel returns the parsed logging level. Validate guarantees it parses.
func (cfg Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(cfg.Logging.Level)
	return level
}
