package sync

import (
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/lp/internal/command"
	"github.com/rileyhilliard/lp/internal/errors"
	exectesting "github.com/rileyhilliard/lp/internal/exec/testing"
	"github.com/rileyhilliard/lp/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.slept = append(s.slept, d)
}

func newTestCoordinator(opts Options) (*Coordinator, *exectesting.FakeRunner, *sleepRecorder, *logger.BufferLogger) {
	runner := exectesting.NewFakeRunner()
	log := logger.NewBufferLogger()
	c := New(runner, command.NewBuilder(""), opts, log)
	rec := &sleepRecorder{}
	c.SetSleep(rec.sleep)
	return c, runner, rec, log
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.Enabled)
	assert.Equal(t, time.Second, opts.SettleDelay)
	assert.Equal(t, 5*time.Second, opts.QueueClearDelay)
	assert.Equal(t, 400, opts.QueueClearThreshold)
	assert.Equal(t, "~/.lpass/upload-queue", opts.UploadQueueDir)
}

func TestNew_FillsDefaults(t *testing.T) {
	c := New(exectesting.NewFakeRunner(), command.NewBuilder(""), Options{}, nil)

	assert.Equal(t, DefaultUploadQueueDir, c.Options().UploadQueueDir)
	assert.NotNil(t, c.log)
}

func TestSync_SleepsAroundSync(t *testing.T) {
	c, runner, rec, _ := newTestCoordinator(DefaultOptions())

	require.NoError(t, c.Sync())

	assert.Equal(t, []string{"lpass sync"}, runner.Lines())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, rec.slept)
}

func TestSync_Failure(t *testing.T) {
	c, runner, rec, _ := newTestCoordinator(DefaultOptions())
	runner.Fail("lpass sync", "Error: Could not find decryption key. Perhaps you need to login with `lpass login`.")

	err := c.Sync()

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCommand))
	assert.Len(t, rec.slept, 1, "no settle delay after a failed sync")
}

func TestSync_Disabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Enabled = false
	c, runner, rec, _ := newTestCoordinator(opts)

	require.NoError(t, c.Sync())

	assert.Empty(t, runner.Calls)
	assert.Empty(t, rec.slept)
}

func TestRead_SmallResponse(t *testing.T) {
	c, runner, _, _ := newTestCoordinator(DefaultOptions())
	runner.On("show", "MyAccount [id: 42]\nUsername: me\n")

	out, err := c.Read(command.NewBuilder("").Show("MyAccount", command.ShowOptions{All: true}))

	require.NoError(t, err)
	assert.Equal(t, "MyAccount [id: 42]\nUsername: me\n", out)
	assert.Equal(t, []string{"lpass sync", "lpass show --all 'MyAccount'"}, runner.Lines())
	assert.Zero(t, runner.CountMatching("rm -f"))
}

func TestRead_LargeResponseClearsQueue(t *testing.T) {
	c, runner, rec, log := newTestCoordinator(DefaultOptions())
	runner.On("show", strings.Repeat("x", 401))

	_, err := c.Read(command.Command{Line: "lpass show --all 'x'"})

	require.NoError(t, err)
	lines := runner.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "rm -f ~/.lpass/upload-queue/*", lines[2])
	assert.Equal(t, []time.Duration{time.Second, time.Second, 5 * time.Second}, rec.slept)
	assert.True(t, log.Contains("removing sync files"))
}

func TestRead_ThresholdIsStrict(t *testing.T) {
	c, runner, _, _ := newTestCoordinator(DefaultOptions())
	runner.On("show", strings.Repeat("x", 400))

	_, err := c.Read(command.Command{Line: "lpass show --all 'x'"})

	require.NoError(t, err)
	assert.Zero(t, runner.CountMatching("rm -f"), "exactly the threshold does not clear")
}

func TestRead_ThresholdDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.QueueClearThreshold = 0
	c, runner, _, _ := newTestCoordinator(opts)
	runner.On("show", strings.Repeat("x", 10000))

	_, err := c.Read(command.Command{Line: "lpass show --all 'x'"})

	require.NoError(t, err)
	assert.Zero(t, runner.CountMatching("rm -f"))
}

func TestRead_CustomQueueDir(t *testing.T) {
	opts := DefaultOptions()
	opts.UploadQueueDir = "/tmp/lp queue"
	c, runner, _, _ := newTestCoordinator(opts)
	runner.On("show", strings.Repeat("x", 500))

	_, err := c.Read(command.Command{Line: "lpass show --all 'x'"})

	require.NoError(t, err)
	assert.Equal(t, 1, runner.CountMatching("rm -f '/tmp/lp queue'/*"))
}

func TestRead_QueueClearFailureIsOnlyLogged(t *testing.T) {
	c, runner, _, log := newTestCoordinator(DefaultOptions())
	runner.On("show", strings.Repeat("x", 500))
	runner.Fail("rm -f", "rm: cannot remove: Permission denied")

	out, err := c.Read(command.Command{Line: "lpass show --all 'x'"})

	require.NoError(t, err)
	assert.Len(t, out, 500)
	assert.True(t, log.HasLevel("warn"))
	assert.True(t, log.Contains("could not clear upload queue"))
}

func TestRead_SyncFailureSkipsQuery(t *testing.T) {
	c, runner, _, _ := newTestCoordinator(DefaultOptions())
	runner.Fail("lpass sync", "Error: not logged in")

	_, err := c.Read(command.Command{Line: "lpass show --all 'x'"})

	require.Error(t, err)
	assert.Equal(t, []string{"lpass sync"}, runner.Lines())
}

func TestRead_QueryFailure(t *testing.T) {
	c, runner, _, _ := newTestCoordinator(DefaultOptions())
	runner.Respond(exectesting.Response{
		Match:    "show",
		Stdout:   "",
		Stderr:   "Error: Could not find specified account(s).",
		ExitCode: 1,
	})

	_, err := c.Read(command.Command{Line: "lpass show --all 'x'"})

	require.Error(t, err)
	assert.Zero(t, runner.CountMatching("rm -f"))
}

func TestMutate_SyncsAfterWrite(t *testing.T) {
	c, runner, rec, _ := newTestCoordinator(DefaultOptions())

	_, err := c.Mutate(command.Command{Line: "lpass rm --sync=no 42"})

	require.NoError(t, err)
	assert.Equal(t, []string{"lpass rm --sync=no 42", "lpass sync"}, runner.Lines())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, rec.slept)
}

func TestMutate_FailedWriteDoesNotSync(t *testing.T) {
	c, runner, _, _ := newTestCoordinator(DefaultOptions())
	runner.Fail("rm --sync=no", "Error: Could not find specified account '42'.")

	_, err := c.Mutate(command.Command{Line: "lpass rm --sync=no 42"})

	require.Error(t, err)
	assert.Zero(t, runner.CountMatching("lpass sync"))
}

func TestMutate_Disabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Enabled = false
	c, runner, _, _ := newTestCoordinator(opts)

	_, err := c.Mutate(command.Command{Line: "lpass rm --sync=no 42"})

	require.NoError(t, err)
	assert.Equal(t, []string{"lpass rm --sync=no 42"}, runner.Lines())
}

func TestCoordinator_ConcurrentUse(t *testing.T) {
	c, runner, _, _ := newTestCoordinator(DefaultOptions())
	c.SetSleep(func(time.Duration) {})
	runner.On("show", strings.Repeat("x", 500))

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = c.Read(command.Command{Line: "lpass show --all 'x'"})
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, 8, runner.CountMatching("lpass sync"))
	assert.Equal(t, 8, runner.CountMatching("rm -f"))
}
