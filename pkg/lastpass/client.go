// Package lastpass is a Go client for the LastPass command line tool.
//
// It drives an installed lpass binary, so the user must have lpass on PATH
// (or pass Options.Binary). All state lives inside lpass; this package only
// builds commands and parses what lpass prints.
//
//	client := lastpass.New(lastpass.Options{})
//	if err := client.Login("user@example.com", password); err != nil {
//		return err
//	}
//	acct, err := client.Accounts().Find("Work/Server1", true)
//
// Only one lpass session can be active per user, so a Client should not be
// shared across unrelated logins.
package lastpass

import (
	"strings"

	"github.com/rileyhilliard/lp/internal/command"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/exec"
	"github.com/rileyhilliard/lp/internal/logger"
	"github.com/rileyhilliard/lp/internal/lpass"
	"github.com/rileyhilliard/lp/internal/parser"
	"github.com/rileyhilliard/lp/internal/sync"
)

// Aliases so callers outside this module can implement Backend and tune syncing.
type (
	Fields       = command.Fields
	LoginOptions = command.LoginOptions
	QueryOptions = lpass.QueryOptions
	Record       = parser.Record
	SyncOptions  = sync.Options
)

// Backend is the lpass command surface the entities are written against.
// *lpass.CLI is the production implementation.
type Backend interface {
	Login(username, password string, opts LoginOptions) (string, error)
	Logout(force bool) (string, error)
	Status(quiet bool) (string, error)
	Sync() error
	Query(search string, opts QueryOptions) ([]Record, error)
	ResolveID(name string) (string, error)
	Add(name string, fields Fields) (string, error)
	AddGroup(name string) (string, error)
	Edit(id string, fields Fields) (string, error)
	EditGroup(id, name string) (string, error)
	Remove(id string) (string, error)
	Export() (string, error)
	Import(csvFile string) (string, error)
	Version() (string, error)
}

// Options configures a Client.
type Options struct {
	// Binary is the lpass executable (default "lpass").
	Binary string
	// Verbose echoes every lpass command and its output to stdout.
	Verbose bool
	// Sync tunes the explicit sync calls. The zero value means DefaultSyncOptions.
	Sync *SyncOptions
	// Login is passed to every "lpass login".
	Login LoginOptions
	// Logger receives debug output. Defaults to a no-op logger.
	Logger logger.Logger
	// Decorate styles the verbose command echo.
	Decorate func(string) string
	// Backend replaces the lpass process stack entirely.
	Backend Backend
}

// DefaultSyncOptions returns the standard sync settings.
func DefaultSyncOptions() SyncOptions {
	return sync.DefaultOptions()
}

// Client is the entry point for working with a LastPass vault.
type Client struct {
	backend Backend
	login   LoginOptions
	log     logger.Logger
}

// New builds a Client.
func New(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	backend := opts.Backend
	if backend == nil {
		backend = newCLIBackend(opts, log)
	}

	return &Client{backend: backend, login: opts.Login, log: log}
}

func newCLIBackend(opts Options, log logger.Logger) *lpass.CLI {
	builder := command.NewBuilder(opts.Binary)
	runner := exec.NewLocalRunner(exec.LocalOptions{
		Verbose:  opts.Verbose,
		Decorate: opts.Decorate,
		Logger:   logger.WithComponent(log, "exec"),
	})
	syncOpts := sync.DefaultOptions()
	if opts.Sync != nil {
		syncOpts = *opts.Sync
	}
	coord := sync.New(runner, builder, syncOpts, logger.WithComponent(log, "sync"))
	return lpass.New(builder, runner, coord, logger.WithComponent(log, "lpass"))
}

// Login opens a session. An already active session is reused and only synced.
func (c *Client) Login(email, password string) error {
	if c.LoggedIn() {
		c.log.Debug("reusing active session")
		return c.backend.Sync()
	}

	out, err := c.backend.Login(email, password, c.login)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrLogin, "Login failed",
			"Check the email and master password, then try again")
	}
	if !strings.Contains(out, "Success") {
		return errors.New(errors.ErrLogin, "Login failed! "+strings.TrimSpace(out),
			"Check the email and master password, then try again")
	}
	return c.backend.Sync()
}

// Logout ends the session. It is a no-op when already logged out.
func (c *Client) Logout() error {
	if c.LoggedOut() {
		return nil
	}
	_, err := c.backend.Logout(false)
	return err
}

// LoggedIn reports whether lpass has an active session. Errors count as logged out.
func (c *Client) LoggedIn() bool {
	out, err := c.backend.Status(false)
	if err != nil {
		c.log.Debug("status failed: %v", err)
		return false
	}
	return strings.Contains(out, "Logged in")
}

// LoggedOut is the inverse of LoggedIn.
func (c *Client) LoggedOut() bool {
	return !c.LoggedIn()
}

// Sync forces a sync with the LastPass servers.
func (c *Client) Sync() error {
	return c.backend.Sync()
}

// Accounts returns the account collection.
func (c *Client) Accounts() *Accounts {
	return &Accounts{backend: c.backend}
}

// Groups returns the group collection.
func (c *Client) Groups() *Groups {
	return &Groups{backend: c.backend}
}

// Export returns the whole vault as CSV, passwords included.
func (c *Client) Export() (string, error) {
	return c.backend.Export()
}

// Import loads entries from a CSV file.
func (c *Client) Import(csvFile string) error {
	_, err := c.backend.Import(csvFile)
	return err
}

// Version returns the lpass version line.
func (c *Client) Version() (string, error) {
	out, err := c.backend.Version()
	return strings.TrimSpace(out), err
}

// String hides the client's internals.
func (c *Client) String() string {
	return "lastpass.Client{}"
}

// GoString hides the client's internals from %#v.
func (c *Client) GoString() string {
	return c.String()
}
