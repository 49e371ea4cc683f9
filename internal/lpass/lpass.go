// Package lpass exposes the lpass command surface as Go methods.
//
// Each method builds a command, runs it through the sync coordinator (reads
// and writes) or directly (session and housekeeping commands), and classifies
// well-known lpass failures into coded errors. Output is returned raw except
// for Query and ResolveID, which parse it.
package lpass

import (
	stderrors "errors"
	"strings"

	"github.com/rileyhilliard/lp/internal/command"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/exec"
	"github.com/rileyhilliard/lp/internal/logger"
	"github.com/rileyhilliard/lp/internal/parser"
	"github.com/rileyhilliard/lp/internal/sync"
)

// Output fragments lpass prints for lookups that match nothing or too much.
const (
	notFoundMarker  = "Could not find specified account"
	ambiguousMarker = parser.MultipleMatches
)

// CLI drives one lpass binary.
type CLI struct {
	builder *command.Builder
	runner  exec.Runner
	sync    *sync.Coordinator
	log     logger.Logger
}

// New creates a CLI. The coordinator must share the runner.
func New(builder *command.Builder, runner exec.Runner, coord *sync.Coordinator, log logger.Logger) *CLI {
	if log == nil {
		log = logger.Noop()
	}
	return &CLI{builder: builder, runner: runner, sync: coord, log: log}
}

// QueryOptions controls Query.
type QueryOptions struct {
	// Regex treats the search as a basic regular expression.
	Regex bool
	// WithPasswords keeps passwords in the parsed records.
	WithPasswords bool
}

// Login starts a session. It does not sync.
func (c *CLI) Login(username, password string, opts command.LoginOptions) (string, error) {
	c.log.Debug("logging in as %s", username)
	return c.run(c.builder.Login(username, password, opts))
}

// Logout ends the session.
func (c *CLI) Logout(force bool) (string, error) {
	return c.run(c.builder.Logout(force))
}

// Status reports the session state.
func (c *CLI) Status(quiet bool) (string, error) {
	return c.run(c.builder.Status(quiet))
}

// Show syncs and prints matching entries.
func (c *CLI) Show(target string, opts command.ShowOptions) (string, error) {
	out, err := c.sync.Read(c.builder.Show(target, opts))
	return out, classify(err)
}

// List syncs and lists entries, optionally within one group.
func (c *CLI) List(group string, opts command.ListOptions) (string, error) {
	out, err := c.sync.Read(c.builder.List(group, opts))
	return out, classify(err)
}

// Add creates an entry and syncs.
func (c *CLI) Add(name string, fields command.Fields) (string, error) {
	return c.mutate(c.builder.Add(name, fields), nil)
}

// AddGroup creates a folder and syncs.
func (c *CLI) AddGroup(name string) (string, error) {
	return c.mutate(c.builder.AddGroup(name), nil)
}

// Edit updates an entry and syncs.
func (c *CLI) Edit(id string, fields command.Fields) (string, error) {
	return c.mutate(c.builder.Edit(id, fields))
}

// EditGroup renames a folder and syncs.
func (c *CLI) EditGroup(id, name string) (string, error) {
	return c.mutate(c.builder.EditGroup(id, name))
}

// Remove deletes an entry and syncs.
func (c *CLI) Remove(id string) (string, error) {
	return c.mutate(c.builder.Remove(id))
}

// Sync forces a sync with the settle delays.
func (c *CLI) Sync() error {
	return classify(c.sync.Sync())
}

// Export prints every entry as CSV, passwords included.
func (c *CLI) Export() (string, error) {
	return c.run(c.builder.Export())
}

// Import loads entries from a CSV file.
func (c *CLI) Import(csvFile string) (string, error) {
	return c.run(c.builder.Import(csvFile))
}

// Version returns the raw "lpass --version" output.
func (c *CLI) Version() (string, error) {
	return c.run(c.builder.Version())
}

// Passwd is not supported.
func (c *CLI) Passwd() error {
	_, err := c.builder.Passwd()
	return err
}

// Move is not supported.
func (c *CLI) Move() error {
	_, err := c.builder.Move()
	return err
}

// Generate is not supported.
func (c *CLI) Generate() error {
	_, err := c.builder.Generate()
	return err
}

// Duplicate is not supported.
func (c *CLI) Duplicate() error {
	_, err := c.builder.Duplicate()
	return err
}

// Share is not supported.
func (c *CLI) Share() error {
	_, err := c.builder.Share()
	return err
}

// Query shows every entry matching search with all fields expanded and
// parses the result. A search that matches nothing returns an ErrNotFound
// error; callers decide whether that means "empty".
func (c *CLI) Query(search string, opts QueryOptions) ([]parser.Record, error) {
	out, err := c.Show(search, command.ShowOptions{
		ExpandMulti: true,
		All:         true,
		BasicRegexp: opts.Regex,
	})
	if err != nil {
		return nil, err
	}
	records := parser.Parse(out, parser.Options{WithPasswords: opts.WithPasswords})
	c.log.Debug("query %q matched %d entries", search, len(records))
	return records, nil
}

// ResolveID looks up the id of a uniquely named entry.
func (c *CLI) ResolveID(name string) (string, error) {
	out, err := c.Show(name, command.ShowOptions{ID: true})
	if err != nil {
		return "", err
	}
	id, err := parser.ParseID(out)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrAmbiguous,
			"Unable to fetch the id of "+name,
			"The name may not be unique. Response: "+strings.TrimSpace(out))
	}
	return id, nil
}

func (c *CLI) run(cmd command.Command) (string, error) {
	out, err := c.runner.Run(cmd)
	return out, classify(err)
}

func (c *CLI) mutate(cmd command.Command, buildErr error) (string, error) {
	if buildErr != nil {
		return "", buildErr
	}
	out, err := c.sync.Mutate(cmd)
	return out, classify(err)
}

// classify recodes command failures whose output lpass uses to signal
// "no match" or "more than one match". Other errors pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var cmdErr *exec.CommandError
	if !stderrors.As(err, &cmdErr) {
		return err
	}
	output := cmdErr.Output()
	switch {
	case strings.Contains(output, notFoundMarker):
		return errors.WrapWithCode(err, errors.ErrNotFound, "No matching entries found", "")
	case strings.Contains(output, ambiguousMarker):
		return errors.WrapWithCode(err, errors.ErrAmbiguous, "Multiple entries match",
			"Use the entry id or a more specific name")
	}
	return err
}
