package cli

import (
	"fmt"
	"path/filepath"

	"github.com/rileyhilliard/lp/internal/config"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/spf13/cobra"
)

var (
	configInitForce  bool
	configInitGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the lp config file",
	Long: `Manage the lp config file.

lp looks for .lp.yaml in the current directory and its parents (up to the
git root or your home directory), then ~/.config/lp/config.yaml. Every
setting can also be overridden with an LP_ environment variable, e.g.
LP_SYNC_ENABLED=false or LP_BINARY=/opt/lpass/bin/lpass.`,
	Annotations: map[string]string{annotationLenientConfig: "true"},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a config file with the default settings",
	Annotations: map[string]string{annotationLenientConfig: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitCommand(cmd)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting in the config file",
	Long: `Change one setting in the config file, keeping comments intact.

Examples:
  lp config set sync.enabled false
  lp config set sync.settle_delay 2s
  lp config set output.color never`,
	Annotations: map[string]string{annotationLenientConfig: "true"},
	Args:        cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd, args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file in use",
	Annotations: map[string]string{annotationLenientConfig: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configPathCommand(cmd)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write ~/.config/lp/config.yaml instead of ./.lp.yaml")
	configCmd.AddCommand(configInitCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// initTarget picks where "config init" writes.
func initTarget() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if configInitGlobal {
		path := config.GlobalPath()
		if path == "" {
			return "", errors.New(errors.ErrConfig, "Cannot determine home directory", "Pass --config <path> instead")
		}
		return path, nil
	}
	return filepath.Abs(config.ConfigFileName)
}

func configInitCommand(cmd *cobra.Command) error {
	path, err := initTarget()
	if err != nil {
		return err
	}
	if err := config.Write(path, config.DefaultConfig(), configInitForce); err != nil {
		return err
	}
	return writeResult(cmd, map[string]string{"path": path}, func() {
		printSuccess(cmd.OutOrStdout(), "Wrote %s", path)
	})
}

func configSetCommand(cmd *cobra.Command, key, value string) error {
	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig, "No config file found",
			"Run 'lp config init' first")
	}
	if err := config.Set(path, key, value); err != nil {
		return err
	}
	return writeResult(cmd, map[string]string{"path": path, "key": key, "value": value}, func() {
		printSuccess(cmd.OutOrStdout(), "Set %s = %s in %s", key, value, path)
	})
}

func configPathCommand(cmd *cobra.Command) error {
	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	return writeResult(cmd, map[string]string{"path": path}, func() {
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No config file found, using defaults")
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	})
}
