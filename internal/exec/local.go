package exec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rileyhilliard/lp/internal/command"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/logger"
)

// Runner executes a command line and returns everything it wrote to stdout.
type Runner interface {
	Run(cmd command.Command) (string, error)
}

// CommandError describes a command that ran but exited non-zero.
type CommandError struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("Command: '%s', Exit: %d, Stdout: '%s', Stderr: '%s'",
		e.Command, e.ExitCode, e.Stdout, e.Stderr)
}

// Output returns stdout and stderr together, for substring checks.
func (e *CommandError) Output() string {
	return e.Stdout + e.Stderr
}

// DefaultShell runs every command line.
const DefaultShell = "/bin/sh"

// LocalOptions configures a LocalRunner.
type LocalOptions struct {
	// Shell used for "sh -c". Defaults to /bin/sh; command lines are POSIX
	// syntax, so the user's login shell is never used.
	Shell string
	// Verbose echoes each command and its stdout lines to Echo as they arrive.
	Verbose bool
	// Echo receives verbose output. Defaults to os.Stdout.
	Echo io.Writer
	// Decorate styles the "RUN COMMAND" header in verbose mode. Optional.
	Decorate func(string) string
	Logger   logger.Logger
}

// LocalRunner runs commands through a local shell, one child process per call.
// It never retries and has no timeout of its own.
type LocalRunner struct {
	opts LocalOptions
}

// NewLocalRunner creates a LocalRunner, filling in defaults.
func NewLocalRunner(opts LocalOptions) *LocalRunner {
	if opts.Shell == "" {
		opts.Shell = DefaultShell
	}
	if opts.Echo == nil {
		opts.Echo = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	return &LocalRunner{opts: opts}
}

// Run executes cmd and returns its accumulated stdout.
//
// A non-zero exit yields an ErrCommand error wrapping *CommandError. A shell
// that could not start, or a binary the shell could not find, yields ErrSpawn.
func (r *LocalRunner) Run(cmd command.Command) (string, error) {
	display := cmd.String()
	r.opts.Logger.Debug("run: %s", display)
	if r.opts.Verbose {
		header := "RUN COMMAND:  " + display
		if r.opts.Decorate != nil {
			header = r.opts.Decorate(header)
		}
		fmt.Fprintln(r.opts.Echo, header)
	}

	proc := exec.Command(r.opts.Shell, "-c", cmd.Line)
	if cmd.Stdin != "" {
		proc.Stdin = strings.NewReader(cmd.Stdin)
	}
	var stderr bytes.Buffer
	proc.Stderr = &stderr

	stdoutPipe, err := proc.StdoutPipe()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrSpawn,
			fmt.Sprintf("Couldn't create stdout pipe for: %s", display),
			"This shouldn't happen - please report this bug!")
	}

	if err := proc.Start(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrSpawn,
			fmt.Sprintf("Couldn't start: %s", display),
			"Make sure the shell exists and is executable.")
	}

	stdout := r.stream(stdoutPipe)

	waitErr := proc.Wait()
	if waitErr == nil {
		return stdout, nil
	}

	exitErr, ok := waitErr.(*exec.ExitError)
	if !ok {
		return stdout, errors.WrapWithCode(waitErr, errors.ErrSpawn,
			fmt.Sprintf("Failed to run: %s", display),
			"Make sure the command exists and is executable.")
	}

	cmdErr := &CommandError{
		Command:  display,
		Stdout:   stdout,
		Stderr:   stderr.String(),
		ExitCode: exitErr.ExitCode(),
	}
	r.opts.Logger.Debug("command failed (exit %d): %s", cmdErr.ExitCode, strings.TrimSpace(cmdErr.Stderr))
	if r.opts.Verbose {
		fmt.Fprint(r.opts.Echo, cmdErr.Stderr)
	}

	if spawnErr := HandleExecError(cmdErr); spawnErr != nil {
		return stdout, spawnErr
	}
	return stdout, errors.WrapWithCode(cmdErr, errors.ErrCommand,
		fmt.Sprintf("Command exited with code %d", cmdErr.ExitCode), "")
}

// stream reads stdout line by line, echoing when verbose, and returns the
// full text exactly as written.
func (r *LocalRunner) stream(rd io.Reader) string {
	var acc strings.Builder
	br := bufio.NewReader(rd)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			acc.WriteString(line)
			if r.opts.Verbose {
				fmt.Fprint(r.opts.Echo, line)
				if !strings.HasSuffix(line, "\n") {
					fmt.Fprintln(r.opts.Echo)
				}
			}
		}
		if err != nil {
			return acc.String()
		}
	}
}
