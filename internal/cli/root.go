package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rileyhilliard/lp/internal/config"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/logger"
	"github.com/rileyhilliard/lp/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

// State set up by initApp before any command runs.
var (
	appConfig *config.Config
	appLog    = logger.Noop()
)

// annotationLenientConfig lets a command run on defaults when the config
// file is broken, so it can report or repair it.
const annotationLenientConfig = "lenient-config"

var rootCmd = &cobra.Command{
	Use:   "lp",
	Short: "A friendlier front end for the LastPass CLI",
	Long: `lp drives an installed LastPass CLI (lpass) for you.

It forces a sync around every read and write, parses lpass output into
structured entries, and cleans up the lpass upload queue when it gets stuck.

Examples:
  lp login user@example.com
  lp ls Work
  lp show Work/Server1 --password
  lp add Personal/Email --username me@example.com --password s3cret`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .lp.yaml, then ~/.config/lp/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "echo every lpass command and its output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportError(err, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr()))
	}
}

// initApp loads .env and the config, then sets up colors and logging.
func initApp(cmd *cobra.Command) error {
	yamlMode = false
	loadDotEnv()

	cfg, err := loadConfig()
	if err != nil {
		if cmd.Annotations[annotationLenientConfig] != "true" {
			return err
		}
		cfg = config.DefaultConfig()
	}

	if verbose {
		cfg.Verbose = true
	}
	if cfg.Output.Format == "json" && !cmd.Flags().Changed("json") {
		machineMode = true
	}

	if noColor {
		ui.DisableColors()
	} else {
		ui.SetColorMode(cfg.Output.Color, cmd.OutOrStdout())
	}

	appConfig = cfg
	appLog = logger.New(logger.Options{
		Component: "cli",
		Verbose:   cfg.Verbose,
		Output:    cmd.ErrOrStderr(),
	})
	if err != nil {
		appLog.Warn("ignoring config: %v", strings.TrimSpace(err.Error()))
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config",
			"Fix the config file or run 'lp doctor' for details")
	}
	return cfg, nil
}

// loadDotEnv loads ./.env when present so LP_EMAIL and friends can live there.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		appLog.Warn("could not load .env: %v", err)
	}
}

// reportError prints err the way the user asked for and returns the exit code.
func reportError(err error, stdout, stderr io.Writer) int {
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}

	if isUnknownCommandError(err) {
		fmt.Fprintf(stderr, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), err.Error())
		fmt.Fprintln(stderr, "  Run 'lp --help' to see available commands")
		return 2
	}

	if machineMode {
		_ = WriteJSONFromError(stdout, err)
		return 1
	}

	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(stderr, msg)
	return 1
}

// isUnknownCommandError checks for cobra's unknown command and flag errors.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
