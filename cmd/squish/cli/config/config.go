package config

// Config represents the squish CLI configuration.
// Use mapstructure tags for Viper unmarshaling.
type Config struct {
	Format    string        `mapstructure:"format"`
	BlockSize string        `mapstructure:"block-size"`
	Level     int           `mapstructure:"level"`
	Progress  string        `mapstructure:"progress"`
	Events    EventsConfig  `mapstructure:"events"`
	Metrics   MetricsConfig `mapstructure:"metrics"`
}

// EventsConfig controls logging of progress events.
type EventsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Kinds   []string `mapstructure:"kinds"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	File string `mapstructure:"file"`
}

// Defaults returns the default value of every configuration key.
func Defaults() map[string]any {
	return map[string]any{
		"format":         "gzip",
		"block-size":     "1MiB",
		"level":          0,
		"progress":       "auto",
		"events.enabled": false,
		"events.kinds":   []string{},
		"metrics.file":   "",
	}
}
