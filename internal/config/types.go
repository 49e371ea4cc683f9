package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
const CurrentConfigVersion = 1

// Config represents the lp configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Binary is the lpass executable. A bare name is looked up on PATH.
	Binary string `yaml:"binary" mapstructure:"binary"`

	// Verbose echoes every lpass command and its output.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`

	Login  LoginConfig  `yaml:"login" mapstructure:"login"`
	Sync   SyncConfig   `yaml:"sync" mapstructure:"sync"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// LoginConfig holds the switches passed to "lpass login".
type LoginConfig struct {
	// Trust makes lpass remember this device.
	Trust bool `yaml:"trust" mapstructure:"trust"`

	// PlaintextKey stores the decryption key unencrypted on disk.
	PlaintextKey bool `yaml:"plaintext_key" mapstructure:"plaintext_key"`
}

// SyncConfig tunes the explicit syncs wrapped around every read and write.
type SyncConfig struct {
	// Enabled turns explicit syncing on or off.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// SettleDelay is slept before and after each "lpass sync".
	SettleDelay time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`

	// QueueClearDelay is slept before the upload queue is cleared.
	QueueClearDelay time.Duration `yaml:"queue_clear_delay" mapstructure:"queue_clear_delay"`

	// QueueClearThreshold is the read size (bytes) above which the upload
	// queue is cleared. 0 disables clearing.
	QueueClearThreshold int `yaml:"queue_clear_threshold" mapstructure:"queue_clear_threshold"`

	// UploadQueueDir is lpass's upload queue. A leading ~ is left to the shell.
	UploadQueueDir string `yaml:"upload_queue_dir" mapstructure:"upload_queue_dir"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`

	// Format for listings: "table", "json", or "yaml".
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Binary:  "lpass",
		Sync: SyncConfig{
			Enabled:             true,
			SettleDelay:         time.Second,
			QueueClearDelay:     5 * time.Second,
			QueueClearThreshold: 400,
			UploadQueueDir:      "~/.lpass/upload-queue",
		},
		Output: OutputConfig{
			Color:  "auto",
			Format: "table",
		},
	}
}

// MarshalYAML writes delays as duration strings ("1s") instead of nanoseconds.
func (s SyncConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Enabled             bool   `yaml:"enabled"`
		SettleDelay         string `yaml:"settle_delay"`
		QueueClearDelay     string `yaml:"queue_clear_delay"`
		QueueClearThreshold int    `yaml:"queue_clear_threshold"`
		UploadQueueDir      string `yaml:"upload_queue_dir"`
	}{
		Enabled:             s.Enabled,
		SettleDelay:         s.SettleDelay.String(),
		QueueClearDelay:     s.QueueClearDelay.String(),
		QueueClearThreshold: s.QueueClearThreshold,
		UploadQueueDir:      s.UploadQueueDir,
	}, nil
}
