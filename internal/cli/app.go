package cli

import (
	"fmt"
	"io"

	"github.com/rileyhilliard/lp/internal/command"
	"github.com/rileyhilliard/lp/internal/config"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/exec"
	"github.com/rileyhilliard/lp/internal/logger"
	"github.com/rileyhilliard/lp/internal/lpass"
	"github.com/rileyhilliard/lp/internal/sync"
	"github.com/rileyhilliard/lp/internal/ui"
	"github.com/rileyhilliard/lp/pkg/lastpass"
	"github.com/spf13/cobra"
)

// newRunner creates the process runner. Tests replace it with a fake.
var newRunner = func(cfg *config.Config, echo io.Writer, log logger.Logger) exec.Runner {
	return exec.NewLocalRunner(exec.LocalOptions{
		Verbose:  cfg.Verbose,
		Echo:     echo,
		Decorate: ui.DecorateCommand,
		Logger:   logger.WithComponent(log, "exec"),
	})
}

// app is the lpass stack wired from the loaded config.
type app struct {
	cfg     *config.Config
	builder *command.Builder
	runner  exec.Runner
	client  *lastpass.Client
}

func newApp(cmd *cobra.Command) *app {
	cfg := appConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// The verbose echo goes to stderr so redirected output (JSON, export CSV)
	// stays clean.
	builder := command.NewBuilder(cfg.Binary)
	runner := newRunner(cfg, cmd.ErrOrStderr(), appLog)
	coord := sync.New(runner, builder, syncOptions(cfg), logger.WithComponent(appLog, "sync"))
	backend := lpass.New(builder, runner, coord, logger.WithComponent(appLog, "lpass"))

	return &app{
		cfg:     cfg,
		builder: builder,
		runner:  runner,
		client: lastpass.New(lastpass.Options{
			Backend: backend,
			Login:   loginOptions(cfg),
			Logger:  appLog,
		}),
	}
}

// requireSession fails fast when lpass has no active session.
func (a *app) requireSession() error {
	if a.client.LoggedOut() {
		return errors.New(errors.ErrLogin, "Not logged in", "Run 'lp login <email>' first")
	}
	return nil
}

func syncOptions(cfg *config.Config) sync.Options {
	return sync.Options{
		Enabled:             cfg.Sync.Enabled,
		SettleDelay:         cfg.Sync.SettleDelay,
		QueueClearDelay:     cfg.Sync.QueueClearDelay,
		QueueClearThreshold: cfg.Sync.QueueClearThreshold,
		UploadQueueDir:      cfg.Sync.UploadQueueDir,
	}
}

// loginOptions maps the login config. --plaintext-key needs --force because
// lpass would otherwise ask for confirmation on a terminal we don't give it.
func loginOptions(cfg *config.Config) command.LoginOptions {
	return command.LoginOptions{
		Trust:        cfg.Login.Trust,
		PlaintextKey: cfg.Login.PlaintextKey,
		Force:        cfg.Login.PlaintextKey,
	}
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), fmt.Sprintf(format, args...))
}
