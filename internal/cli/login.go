package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/rileyhilliard/lp/internal/config"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// credentials come from LP_EMAIL and LP_PASSWORD (or a .env file).
type credentials struct {
	Email    string `envconfig:"EMAIL"`
	Password string `envconfig:"PASSWORD"`
}

var (
	loginTrust  bool
	logoutForce bool
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in to LastPass",
	Long: `Log in to LastPass through lpass and sync the vault.

The master password is read from LP_PASSWORD if set, otherwise prompted for
without echo. The email may also come from LP_EMAIL. Both can live in a
.env file in the current directory.

Examples:
  lp login user@example.com
  LP_PASSWORD=... lp login user@example.com
  lp login --trust user@example.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginCommand(cmd, args)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of LastPass",
	RunE: func(cmd *cobra.Command, args []string) error {
		return logoutCommand(cmd)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether lpass has an active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(cmd)
	},
}

func init() {
	loginCmd.Flags().BoolVar(&loginTrust, "trust", false, "make lpass trust this device")
	logoutCmd.Flags().BoolVar(&logoutForce, "force", false, "log out even if lpass reports no session")
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
}

func loginCommand(cmd *cobra.Command, args []string) error {
	var creds credentials
	if err := envconfig.Process(config.EnvPrefix, &creds); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read credentials from the environment",
			"Check LP_EMAIL and LP_PASSWORD")
	}

	email := creds.Email
	if len(args) > 0 {
		email = args[0]
	}
	if email == "" {
		return errors.New(errors.ErrInput, "No email given",
			"Pass it as an argument ('lp login user@example.com') or set LP_EMAIL")
	}

	if loginTrust {
		appConfig.Login.Trust = true
	}
	a := newApp(cmd)

	if a.client.LoggedIn() {
		if err := a.client.Sync(); err != nil {
			return err
		}
		return writeResult(cmd, map[string]string{"email": email, "status": "already logged in"}, func() {
			printSuccess(cmd.OutOrStdout(), "Already logged in, vault synced")
		})
	}

	password := creds.Password
	if password == "" {
		var err error
		password, err = promptPassword(cmd, email)
		if err != nil {
			return err
		}
	}

	if err := a.client.Login(email, password); err != nil {
		return err
	}
	appLog.Debug("logged in as %s", email)

	return writeResult(cmd, map[string]string{"email": email, "status": "logged in"}, func() {
		printSuccess(cmd.OutOrStdout(), "Logged in as %s", email)
	})
}

// promptPassword asks for the master password on the terminal without echo.
func promptPassword(cmd *cobra.Command, email string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", errors.New(errors.ErrInput, "No master password available",
			"Set LP_PASSWORD or run 'lp login' from a terminal")
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Master password for %s: ", email)
	pw, err := readPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrInput, "Couldn't read the master password", "")
	}
	if len(pw) == 0 {
		return "", errors.New(errors.ErrInput, "Empty master password", "")
	}
	return string(pw), nil
}

func logoutCommand(cmd *cobra.Command) error {
	a := newApp(cmd)

	if logoutForce {
		if _, err := a.runner.Run(a.builder.Logout(true)); err != nil {
			return err
		}
	} else if err := a.client.Logout(); err != nil {
		return err
	}

	return writeResult(cmd, map[string]string{"status": "logged out"}, func() {
		printSuccess(cmd.OutOrStdout(), "Logged out")
	})
}

func statusCommand(cmd *cobra.Command) error {
	a := newApp(cmd)

	out, err := a.runner.Run(a.builder.Status(false))
	loggedIn := err == nil && strings.Contains(out, "Logged in")
	message := strings.TrimSpace(out)
	if message == "" {
		message = "Not logged in."
	}

	data := struct {
		LoggedIn bool   `json:"logged_in" yaml:"logged_in"`
		Message  string `json:"message" yaml:"message"`
	}{loggedIn, message}

	return writeResult(cmd, data, func() {
		if loggedIn {
			printSuccess(cmd.OutOrStdout(), "%s", message)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", statusSymbol(false), message)
	})
}
