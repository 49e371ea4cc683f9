package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/lp/internal/errors"
)

// Allowed values for output settings.
var (
	ColorModes    = []string{"auto", "always", "never"}
	OutputFormats = []string{"table", "json", "yaml"}
)

// binaryUnsafe lists characters that would change the meaning of the
// unquoted binary slot in a shell command line.
const binaryUnsafe = " \t\n;|&$`'\"<>()*?[]{}\\!#"

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but lp only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade lp or lower the version field.")
	}

	if cfg.Binary == "" {
		return errors.New(errors.ErrConfig,
			"'binary' can't be empty",
			"Set it to 'lpass' or the full path of the lpass executable.")
	}
	if strings.ContainsAny(cfg.Binary, binaryUnsafe) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'binary' %q contains shell special characters", cfg.Binary),
			"Use a plain path without spaces, quotes, or shell operators.")
	}

	if err := validateSync(cfg.Sync); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'sync' section in your config.")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your config.")
	}

	return nil
}

func validateSync(s SyncConfig) error {
	if s.SettleDelay < 0 {
		return fmt.Errorf("sync.settle_delay can't be negative (got %s)", s.SettleDelay)
	}
	if s.QueueClearDelay < 0 {
		return fmt.Errorf("sync.queue_clear_delay can't be negative (got %s)", s.QueueClearDelay)
	}
	if s.QueueClearThreshold > 0 && strings.TrimSpace(s.UploadQueueDir) == "" {
		return fmt.Errorf("sync.upload_queue_dir is required when sync.queue_clear_threshold is set")
	}
	if s.UploadQueueDir == "/" || s.UploadQueueDir == "~" {
		return fmt.Errorf("sync.upload_queue_dir %q would clear far more than the upload queue", s.UploadQueueDir)
	}
	return nil
}

func validateOutput(o OutputConfig) error {
	if o.Color != "" && !contains(ColorModes, o.Color) {
		return fmt.Errorf("output.color must be one of %s (got %q)", strings.Join(ColorModes, ", "), o.Color)
	}
	if o.Format != "" && !contains(OutputFormats, o.Format) {
		return fmt.Errorf("output.format must be one of %s (got %q)", strings.Join(OutputFormats, ", "), o.Format)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
