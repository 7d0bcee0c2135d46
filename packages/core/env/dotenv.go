package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv parses a .env file and returns key-value pairs.
// Supports: KEY=value, KEY="quoted value", KEY='single quoted', # comments, export KEY=value
// The OS environment is left untouched; use LoadAndExportDotEnv for {{$NAME}} lookups.
func LoadDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read env file: %w", err)
	}
	return vars, nil
}

// LoadAndExportDotEnv parses a .env file, returns key-value pairs,
// and exports them to the OS environment for {{$NAME}} resolution.
// Variables are only exported if not already set in the OS environment.
func LoadAndExportDotEnv(path string) (map[string]string, error) {
	vars, err := LoadDotEnv(path)
	if err != nil {
		return nil, err
	}

	for k, v := range vars {
		if os.Getenv(k) == "" {
			_ = os.Setenv(k, v) // Error ignored: only fails for invalid key names
		}
	}

	return vars, nil
}
