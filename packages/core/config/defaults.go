package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Output:         "console",
		LogLevel:       "warn",
		Track:          []string{"payment_id", "mandate_id", "client_secret"},
		Verbose:        BoolPtr(false),
		NoColor:        BoolPtr(false),
		StandardChecks: BoolPtr(true),
	}
}

func defaultValues() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"output":          d.Output,
		"log_level":       d.LogLevel,
		"track":           d.Track,
		"verbose":         *d.Verbose,
		"no_color":        *d.NoColor,
		"standard_checks": *d.StandardChecks,
	}
}
