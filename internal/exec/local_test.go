package exec

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/lp/internal/command"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(verbose bool, echo *bytes.Buffer) *LocalRunner {
	opts := LocalOptions{Shell: "/bin/sh", Verbose: verbose}
	if echo != nil {
		opts.Echo = echo
	}
	return NewLocalRunner(opts)
}

func TestRun_SimpleCommand(t *testing.T) {
	out, err := newTestRunner(false, nil).Run(command.Command{Line: "echo hello"})

	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRun_CommandWithPipe(t *testing.T) {
	out, err := newTestRunner(false, nil).Run(command.Command{Line: "echo 'hello world' | tr ' ' '_'"})

	require.NoError(t, err)
	assert.Equal(t, "hello_world\n", out)
}

func TestRun_AccumulatesMultipleLines(t *testing.T) {
	out, err := newTestRunner(false, nil).Run(command.Command{Line: "printf 'a [id: 1]\\nUsername: x\\nlast'"})

	require.NoError(t, err)
	assert.Equal(t, "a [id: 1]\nUsername: x\nlast", out, "output is returned verbatim, including a missing final newline")
}

func TestRun_Stdin(t *testing.T) {
	out, err := newTestRunner(false, nil).Run(command.Command{Line: "cat", Stdin: "secret\n"})

	require.NoError(t, err)
	assert.Equal(t, "secret\n", out)
}

func TestRun_NonZeroExit(t *testing.T) {
	out, err := newTestRunner(false, nil).Run(command.Command{
		Line: "echo partial; echo 'Error: Could not find specified account(s).' >&2; exit 1",
	})

	require.Error(t, err)
	assert.Equal(t, "partial\n", out)
	assert.True(t, errors.IsCode(err, errors.ErrCommand))

	var cmdErr *CommandError
	require.True(t, stderrors.As(err, &cmdErr))
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.Equal(t, "partial\n", cmdErr.Stdout)
	assert.Contains(t, cmdErr.Stderr, "Could not find specified account")
	assert.Contains(t, cmdErr.Command, "echo partial")
	assert.Contains(t, err.Error(), "Could not find specified account", "message carries stderr")
}

func TestRun_ExitCodePreserved(t *testing.T) {
	_, err := newTestRunner(false, nil).Run(command.Command{Line: "exit 42"})

	var cmdErr *CommandError
	require.True(t, stderrors.As(err, &cmdErr))
	assert.Equal(t, 42, cmdErr.ExitCode)
}

func TestRun_BinaryNotFound(t *testing.T) {
	_, err := newTestRunner(false, nil).Run(command.Command{Line: "this_command_does_not_exist_xyz123 show 'x'"})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpawn), "missing binary is a spawn failure, got: %v", err)
	assert.Contains(t, err.Error(), "this_command_does_not_exist_xyz123")
}

func TestRun_ShellNotFound(t *testing.T) {
	r := NewLocalRunner(LocalOptions{Shell: filepath.Join(t.TempDir(), "no-shell")})

	_, err := r.Run(command.Command{Line: "echo hi"})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpawn))
	assert.Contains(t, err.Error(), "echo hi")
}

func TestNewLocalRunner_IgnoresLoginShell(t *testing.T) {
	t.Setenv("SHELL", filepath.Join(t.TempDir(), "tcsh"))

	r := NewLocalRunner(LocalOptions{})
	out, err := r.Run(command.Command{Line: "LP_TEST_VALUE=posix sh -c 'echo $LP_TEST_VALUE'"})

	require.NoError(t, err)
	assert.Equal(t, DefaultShell, r.opts.Shell)
	assert.Equal(t, "posix\n", out)
}

func TestRun_VerboseEchoesCommandAndOutput(t *testing.T) {
	var echo bytes.Buffer
	r := newTestRunner(true, &echo)

	out, err := r.Run(command.Command{Line: "printf 'one\\ntwo'"})

	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", out)
	assert.Contains(t, echo.String(), "RUN COMMAND:  printf")
	assert.Contains(t, echo.String(), "one\ntwo\n")
}

func TestRun_VerboseRedactsSensitiveCommands(t *testing.T) {
	var echo bytes.Buffer
	r := newTestRunner(true, &echo)

	cmd := command.NewBuilder("true").Add("Name", command.Fields{Password: command.Ptr("hunter2")})
	_, err := r.Run(cmd)

	require.NoError(t, err)
	assert.NotContains(t, echo.String(), "hunter2")
	assert.Contains(t, echo.String(), "<redacted>")
}

func TestRun_QuietByDefault(t *testing.T) {
	var echo bytes.Buffer
	r := newTestRunner(false, &echo)

	_, err := r.Run(command.Command{Line: "echo hidden"})

	require.NoError(t, err)
	assert.Empty(t, echo.String())
}

func TestRun_DecorateAndLogger(t *testing.T) {
	var echo bytes.Buffer
	log := logger.NewBufferLogger()
	r := NewLocalRunner(LocalOptions{
		Shell:    "/bin/sh",
		Verbose:  true,
		Echo:     &echo,
		Decorate: strings.ToUpper,
		Logger:   log,
	})

	_, err := r.Run(command.Command{Line: "echo ok"})

	require.NoError(t, err)
	assert.Contains(t, echo.String(), "RUN COMMAND:  ECHO OK")
	assert.True(t, log.Contains("run: echo ok"))
}

func TestRun_RunsInCurrentEnvironment(t *testing.T) {
	t.Setenv("LP_TEST_VALUE", "from-env")

	out, err := newTestRunner(false, nil).Run(command.Command{Line: "echo $LP_TEST_VALUE"})

	require.NoError(t, err)
	assert.Equal(t, "from-env\n", out)
}

func TestRun_RemovesFilesWithGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte("x"), 0644))

	_, err := newTestRunner(false, nil).Run(command.NewBuilder("").ClearUploadQueue(dir))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCommandError_Output(t *testing.T) {
	e := &CommandError{Command: "lpass show 'x'", Stdout: "out", Stderr: "err", ExitCode: 1}

	assert.Equal(t, "outerr", e.Output())
	assert.Equal(t, "Command: 'lpass show 'x'', Exit: 1, Stdout: 'out', Stderr: 'err'", e.Error())
}
