// Package sync keeps lpass's local cache in step with the LastPass servers.
//
// lpass syncs lazily and its background sync is unreliable, so every read is
// preceded by an explicit "lpass sync" and every write is followed by one.
// Short fixed pauses around each sync give lpass time to finish its own file
// I/O. After a large read the pending upload queue is emptied so the burst of
// access records is never sent; left alone, those records back up later syncs.
package sync

import (
	gosync "sync"
	"time"

	"github.com/rileyhilliard/lp/internal/command"
	"github.com/rileyhilliard/lp/internal/exec"
	"github.com/rileyhilliard/lp/internal/logger"
)

// DefaultUploadQueueDir is where lpass stages pending uploads.
const DefaultUploadQueueDir = "~/.lpass/upload-queue"

// Options tunes the coordinator. The threshold and delays are empirical.
type Options struct {
	// Enabled turns the explicit sync calls on. When false, Read and Mutate
	// only run their command.
	Enabled bool
	// SettleDelay is slept before and after every "lpass sync".
	SettleDelay time.Duration
	// QueueClearDelay is slept before clearing the upload queue, letting any
	// prior sync finish.
	QueueClearDelay time.Duration
	// QueueClearThreshold is the response length (in bytes) above which the
	// upload queue is cleared after a read. Zero or negative disables clearing.
	QueueClearThreshold int
	// UploadQueueDir is the lpass upload queue directory.
	UploadQueueDir string
}

// DefaultOptions returns the settings lpass has been observed to need.
func DefaultOptions() Options {
	return Options{
		Enabled:             true,
		SettleDelay:         time.Second,
		QueueClearDelay:     5 * time.Second,
		QueueClearThreshold: 400,
		UploadQueueDir:      DefaultUploadQueueDir,
	}
}

// Coordinator wraps lpass reads and writes with explicit syncs.
// Sync and queue clearing are serialised so a clear never overlaps a sync.
type Coordinator struct {
	runner  exec.Runner
	builder *command.Builder
	opts    Options
	log     logger.Logger
	sleep   func(time.Duration)

	mu gosync.Mutex
}

// New creates a Coordinator.
func New(runner exec.Runner, builder *command.Builder, opts Options, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Noop()
	}
	if opts.UploadQueueDir == "" {
		opts.UploadQueueDir = DefaultUploadQueueDir
	}
	return &Coordinator{
		runner:  runner,
		builder: builder,
		opts:    opts,
		log:     log,
		sleep:   time.Sleep,
	}
}

// SetSleep replaces time.Sleep, for tests.
func (c *Coordinator) SetSleep(fn func(time.Duration)) {
	c.sleep = fn
}

// Options returns the coordinator's settings.
func (c *Coordinator) Options() Options {
	return c.opts
}

// Sync runs "lpass sync" with a settle delay on each side.
func (c *Coordinator) Sync() error {
	if !c.opts.Enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sleep(c.opts.SettleDelay)
	if _, err := c.runner.Run(c.builder.Sync()); err != nil {
		return err
	}
	c.sleep(c.opts.SettleDelay)
	return nil
}

// Read syncs, runs a query, and clears the upload queue if the response is large.
func (c *Coordinator) Read(cmd command.Command) (string, error) {
	if err := c.Sync(); err != nil {
		return "", err
	}

	out, err := c.runner.Run(cmd)
	if err != nil {
		return out, err
	}

	if c.shouldClearQueue(out) {
		if err := c.ClearUploadQueue(); err != nil {
			c.log.Warn("could not clear upload queue %s: %v", c.opts.UploadQueueDir, err)
		}
	}
	return out, nil
}

// Mutate runs a write and syncs afterwards. Nothing is synced if the write fails.
func (c *Coordinator) Mutate(cmd command.Command) (string, error) {
	out, err := c.runner.Run(cmd)
	if err != nil {
		return out, err
	}
	if err := c.Sync(); err != nil {
		return out, err
	}
	return out, nil
}

// ClearUploadQueue waits QueueClearDelay and then empties the upload queue.
func (c *Coordinator) ClearUploadQueue() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Debug("removing sync files from %s", c.opts.UploadQueueDir)
	c.sleep(c.opts.QueueClearDelay)
	_, err := c.runner.Run(c.builder.ClearUploadQueue(c.opts.UploadQueueDir))
	return err
}

func (c *Coordinator) shouldClearQueue(out string) bool {
	return c.opts.QueueClearThreshold > 0 && len(out) > c.opts.QueueClearThreshold
}
