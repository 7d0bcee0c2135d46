package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read into the config.
// Nested keys use a double underscore: PAYCHAIN_VARIABLES__API_KEY.
const EnvPrefix = "PAYCHAIN_"

// Config represents the paychain configuration
type Config struct {
	Output         string            `conf:"output"`      // console, json or junit
	OutputFile     string            `conf:"output_file"` // defaults to stdout
	Verbose        *bool             `conf:"verbose"`
	NoColor        *bool             `conf:"no_color"`
	LogLevel       string            `conf:"log_level"`
	Track          []string          `conf:"track"`
	EnvFile        string            `conf:"env_file"`
	StandardChecks *bool             `conf:"standard_checks"`
	Variables      map[string]string `conf:"variables"`
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetStandardChecks defaults to true.
func (c *Config) GetStandardChecks() bool {
	return getBool(c.StandardChecks, true)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".paychain.json",
	"paychain.json",
	".paychainrc",
}

// LoadConfig loads configuration from the specified path, or from the
// first config file found in the current directory. Environment
// variables override file values.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return load(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches dir for a config file. Defaults and
// environment variables apply when none exists.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return load(configPath)
		}
	}
	return load("")
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", transformEnv), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "conf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// listKeys are decoded from comma-separated environment values.
var listKeys = map[string]bool{"track": true}

// transformEnv maps PAYCHAIN_VARIABLES__API_KEY to variables.api_key and
// splits list values such as PAYCHAIN_TRACK=payment_id,refund_id.
func transformEnv(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	key = strings.ReplaceAll(strings.ToLower(key), "__", ".")
	if !listKeys[key] {
		return key, value
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.Output != "" {
		result.Output = other.Output
	}
	if other.OutputFile != "" {
		result.OutputFile = other.OutputFile
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if len(other.Track) > 0 {
		result.Track = other.Track
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.StandardChecks != nil {
		result.StandardChecks = other.StandardChecks
	}

	if len(other.Variables) > 0 {
		vars := make(map[string]string, len(c.Variables)+len(other.Variables))
		for k, v := range c.Variables {
			vars[k] = v
		}
		for k, v := range other.Variables {
			vars[k] = v
		}
		result.Variables = vars
	}

	return &result
}
