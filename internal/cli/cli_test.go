package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/lp/internal/config"
	"github.com/rileyhilliard/lp/internal/exec"
	exectesting "github.com/rileyhilliard/lp/internal/exec/testing"
	"github.com/rileyhilliard/lp/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const testConfig = `version: 1
sync:
  enabled: true
  settle_delay: 0s
  queue_clear_delay: 0s
  queue_clear_threshold: 400
  upload_queue_dir: ~/.lpass/upload-queue
output:
  color: never
`

const loggedIn = "Logged in as user@example.com.\n"

// setupCLI isolates HOME and the working directory, writes a config with no
// sync delays, and routes every lpass call to a fake runner.
func setupCLI(t *testing.T) *exectesting.FakeRunner {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("LP_EMAIL", "")
	t.Setenv("LP_PASSWORD", "")
	work := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(work, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(work, config.ConfigFileName), []byte(testConfig), 0644))
	t.Chdir(work)

	runner := exectesting.NewFakeRunner()

	oldRunner, oldTerminal, oldRead, oldConfirm := newRunner, isTerminal, readPassword, confirm
	newRunner = func(*config.Config, io.Writer, logger.Logger) exec.Runner { return runner }
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() {
		newRunner, isTerminal, readPassword, confirm = oldRunner, oldTerminal, oldRead, oldConfirm
	})

	return runner
}

// runCLI executes the root command with fresh flag values.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
