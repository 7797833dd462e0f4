// Package config loads pureproto settings from YAML or TOML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/anirudhraja/pureproto/wire"
)

const (
	EnvAllowUnknownEnums = "PUREPROTO_ALLOW_UNKNOWN_ENUM_DECODE"
	EnvMaxDepth          = "PUREPROTO_MAX_DEPTH"
	EnvUnwrapWrappers    = "PUREPROTO_UNWRAP_WRAPPERS"
	EnvProtoPath         = "PUREPROTO_PROTO_PATH"
	EnvWellKnownJSON     = "PUREPROTO_WELL_KNOWN_JSON"
)

// Config controls decoding behavior, schema loading and logging.
type Config struct {
	Decode DecodeConfig `yaml:"decode" toml:"decode"`
	Schema SchemaConfig `yaml:"schema" toml:"schema"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

type DecodeConfig struct {
	// AllowUnknownEnumValues keeps enum numbers missing from the enum
	// definition instead of failing the decode.
	AllowUnknownEnumValues bool `yaml:"allow_unknown_enum_values" toml:"allow_unknown_enum_values"`
	// MaxDepth bounds embedded message nesting; 0 uses the wire default.
	MaxDepth int `yaml:"max_depth" toml:"max_depth"`
	// UnwrapWrappers reports wrapper messages (google.protobuf.StringValue
	// and friends) as their plain value in map output.
	UnwrapWrappers bool `yaml:"unwrap_wrappers" toml:"unwrap_wrappers"`
	// WellKnownJSON reports Timestamp, Duration, FieldMask, Struct and Any
	// in their JSON mapping forms in map output.
	WellKnownJSON bool `yaml:"well_known_json" toml:"well_known_json"`
}

type SchemaConfig struct {
	// ProtoPaths are the directories imports are resolved against.
	ProtoPaths []string `yaml:"proto_paths" toml:"proto_paths"`
	// Files are .proto files or directories loaded at startup.
	Files []string `yaml:"files" toml:"files"`
}

type LogConfig struct {
	Level   string `yaml:"level" toml:"level"`
	NoColor bool   `yaml:"no_color" toml:"no_color"`
	JSON    bool   `yaml:"json" toml:"json"`
}

func Default() Config {
	return Config{
		Decode: DecodeConfig{
			MaxDepth:       wire.DefaultMaxDepth,
			UnwrapWrappers: true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .toml.
func Load(path string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("config %s: unsupported format, want .yaml, .yml or .toml", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays the PUREPROTO_* variables that are set. Invalid values
// are reported rather than ignored.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAllowUnknownEnums); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAllowUnknownEnums, err)
		}
		c.Decode.AllowUnknownEnumValues = b
	}
	if v := os.Getenv(EnvUnwrapWrappers); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvUnwrapWrappers, err)
		}
		c.Decode.UnwrapWrappers = b
	}
	if v := os.Getenv(EnvWellKnownJSON); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWellKnownJSON, err)
		}
		c.Decode.WellKnownJSON = b
	}
	if v := os.Getenv(EnvMaxDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDepth, err)
		}
		c.Decode.MaxDepth = n
	}
	if v := os.Getenv(EnvProtoPath); v != "" {
		c.Schema.ProtoPaths = append(c.Schema.ProtoPaths, filepath.SplitList(v)...)
	}
	return c.Validate()
}

func (c Config) Validate() error {
	if c.Decode.MaxDepth < 0 {
		return fmt.Errorf("decode.max_depth must not be negative, got %d", c.Decode.MaxDepth)
	}
	return nil
}

// DecodeOptions returns the wire options the decode settings describe.
func (c Config) DecodeOptions() wire.DecodeOptions {
	return wire.DecodeOptions{
		AllowUnknownEnumValues: c.Decode.AllowUnknownEnumValues,
		MaxDepth:               c.Decode.MaxDepth,
	}
}
