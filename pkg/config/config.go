// Package config loads process configuration from environment variables.
// A .env file in the working directory is read first when present; values
// already set in the environment win.
package config

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Transfer TransferConfig
	Logging  LoggingConfig
	Settings SettingsConfig
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	// DSN is a SQLite path or a postgres:// URL (default: vocabulary.db)
	DSN string `env:"VOCAB_DB_DSN" envAlt:"DATABASE_URL" default:"vocabulary.db"`
}

// TransferConfig holds import/export defaults.
type TransferConfig struct {
	// Delimiter is the default field separator: tab, space, comma, semicolon (default: tab)
	Delimiter string `env:"VOCAB_DEFAULT_DELIMITER" default:"tab"`

	// MaxLineBytes bounds a single imported line (default: 1 MiB)
	MaxLineBytes int `env:"VOCAB_MAX_LINE_BYTES" default:"1048576"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// SettingsConfig points at the persisted user settings.
type SettingsConfig struct {
	// Path of the YAML settings file (default: settings.yaml)
	Path string `env:"VOCAB_SETTINGS_PATH" default:"settings.yaml"`
}
