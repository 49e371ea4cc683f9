// Package command builds the shell command lines used to drive the lpass CLI.
//
// Nothing in this package executes anything. Every operation returns a
// Command value that an exec.Runner can run with "sh -c". Arguments wrapped in
// single quotes go through util.ShellQuote; values embedded in the
// double-quoted payload fed to "lpass add/edit" go through
// util.EscapeDoubleQuoted. Mixing the two up is a correctness bug.
package command

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/util"
)

// DefaultBinary is the lpass executable looked up on PATH.
const DefaultBinary = "lpass"

// Command is a fully formed shell command line plus optional standard input.
type Command struct {
	// Line is passed verbatim to "sh -c".
	Line string
	// Stdin is written to the process's standard input, if non-empty.
	Stdin string
	// Sensitive marks commands whose Line embeds secrets (add/edit payloads).
	Sensitive bool
}

// String returns a representation safe for logs. Stdin is never included and
// sensitive lines are reduced to the lpass invocation after the pipe.
func (c Command) String() string {
	if !c.Sensitive {
		return c.Line
	}
	if idx := strings.LastIndex(c.Line, " | "); idx >= 0 {
		return "<redacted> | " + c.Line[idx+3:]
	}
	return "<redacted>"
}

// Builder creates lpass command lines.
type Builder struct {
	Binary string
}

// NewBuilder returns a Builder for the given lpass binary (DefaultBinary if empty).
func NewBuilder(binary string) *Builder {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Builder{Binary: binary}
}

// LoginOptions map to "lpass login" switches.
type LoginOptions struct {
	Trust        bool
	PlaintextKey bool
	Force        bool
}

// Login builds "lpass login". The password travels on stdin so it never shows
// up in process listings.
//
//	lpass login [--trust] [--plaintext-key [--force, -f]] USERNAME
func (b *Builder) Login(username, password string, opts LoginOptions) Command {
	var sb strings.Builder
	sb.WriteString("LPASS_DISABLE_PINENTRY=1 ")
	sb.WriteString(b.Binary)
	sb.WriteString(" login")
	if opts.Trust {
		sb.WriteString(" --trust")
	}
	if opts.PlaintextKey {
		sb.WriteString(" --plaintext-key")
	}
	if opts.Force {
		sb.WriteString(" --force")
	}
	sb.WriteString(" ")
	sb.WriteString(util.ShellQuote(username))

	return Command{Line: sb.String(), Stdin: password + "\n"}
}

// Logout builds "lpass logout", answering the confirmation prompt.
//
//	lpass logout [--force, -f]
func (b *Builder) Logout(force bool) Command {
	line := `echo "Y" | ` + b.Binary + " logout"
	if force {
		line += " --force"
	}
	return Command{Line: line}
}

// Status builds "lpass status".
//
//	lpass status [--quiet, -q]
func (b *Builder) Status(quiet bool) Command {
	line := b.Binary + " status"
	if quiet {
		line += " --quiet"
	}
	return Command{Line: line}
}

// ShowOptions map to "lpass show" switches.
type ShowOptions struct {
	Clip        bool
	ExpandMulti bool
	All         bool
	BasicRegexp bool
	ID          bool
}

// Show builds "lpass show".
//
//	lpass show [--clip] [--expand-multi] [--all|--id] [--basic-regexp] {UNIQUENAME|UNIQUEID}
func (b *Builder) Show(target string, opts ShowOptions) Command {
	var sb strings.Builder
	sb.WriteString(b.Binary)
	sb.WriteString(" show")
	if opts.Clip {
		sb.WriteString(" --clip")
	}
	if opts.ExpandMulti {
		sb.WriteString(" --expand-multi")
	}
	if opts.All {
		sb.WriteString(" --all")
	}
	if opts.BasicRegexp {
		sb.WriteString(" --basic-regexp")
	}
	if opts.ID {
		sb.WriteString(" --id")
	}
	sb.WriteString(" ")
	sb.WriteString(util.ShellQuote(target))
	return Command{Line: sb.String()}
}

// ListOptions map to "lpass ls" switches.
type ListOptions struct {
	Long bool
	// ModifiedTime adds -m (last modification time).
	ModifiedTime bool
	// UsedTime adds -u (last use time).
	UsedTime bool
}

// List builds "lpass ls". An empty group lists everything.
//
//	lpass ls [--long, -l] [-m] [-u] [GROUP]
func (b *Builder) List(group string, opts ListOptions) Command {
	var sb strings.Builder
	sb.WriteString(b.Binary)
	sb.WriteString(" ls")
	if opts.Long {
		sb.WriteString(" --long")
	}
	if opts.ModifiedTime {
		sb.WriteString(" -m")
	}
	if opts.UsedTime {
		sb.WriteString(" -u")
	}
	if group != "" {
		sb.WriteString(" ")
		sb.WriteString(util.ShellQuote(group))
	}
	return Command{Line: sb.String()}
}

// Add builds a non-interactive "lpass add". fields.Name is ignored; the entry
// name comes from name, prefixed with fields.Group when set.
//
//	lpass add --non-interactive --sync=no [GROUP/]NAME
func (b *Builder) Add(name string, fields Fields) Command {
	target := name
	if fields.Group != nil && *fields.Group != "" {
		target = *fields.Group + "/" + name
	}
	add := fields
	add.Name = nil
	return b.piped(add.Block(), " add --non-interactive --sync=no "+util.ShellQuote(target))
}

// AddGroup builds the "lpass add" call that creates a folder. lpass needs at
// least one field, so a placeholder URL is written.
func (b *Builder) AddGroup(name string) Command {
	return b.piped("URL: http://group", " add --non-interactive --sync=no "+util.ShellQuote(name+"/"))
}

// Edit builds a non-interactive "lpass edit" for an existing entry. A Name
// field is sent as "group/name" when a group is set.
//
//	lpass edit --non-interactive --sync=no UNIQUEID
func (b *Builder) Edit(id string, fields Fields) (Command, error) {
	if err := validateID(id); err != nil {
		return Command{}, err
	}
	nameWithGroup := ""
	if fields.Group != nil && *fields.Group != "" {
		nameWithGroup = *fields.Group + "/"
	}
	if fields.Name != nil {
		nameWithGroup += *fields.Name
	}
	edit := fields
	edit.Name = nil
	if nameWithGroup != "" {
		edit.Name = &nameWithGroup
	}
	return b.piped(edit.Block(), " edit --non-interactive --sync=no "+id), nil
}

// EditGroup renames a folder. Entries created before the rename keep the old
// group prefix in their names; lpass has no real folder objects.
func (b *Builder) EditGroup(id, name string) (Command, error) {
	if err := validateID(id); err != nil {
		return Command{}, err
	}
	block := "Name: " + util.EscapeDoubleQuoted(name) + "/"
	return b.piped(block, " edit --non-interactive --sync=no "+id), nil
}

// Remove builds "lpass rm" with syncing disabled; callers sync explicitly.
//
//	lpass rm --sync=no UNIQUEID
func (b *Builder) Remove(id string) (Command, error) {
	if err := validateID(id); err != nil {
		return Command{}, err
	}
	return Command{Line: b.Binary + " rm --sync=no " + id}, nil
}

// Sync builds "lpass sync".
func (b *Builder) Sync() Command {
	return Command{Line: b.Binary + " sync"}
}

// Export builds "lpass export". Output is CSV including passwords; the line
// itself holds nothing secret.
func (b *Builder) Export() Command {
	return Command{Line: b.Binary + " export"}
}

// Import builds "lpass import" for a CSV file.
func (b *Builder) Import(csvFile string) Command {
	return Command{Line: b.Binary + " import " + util.ShellQuote(csvFile)}
}

// Version builds "lpass --version".
func (b *Builder) Version() Command {
	return Command{Line: b.Binary + " --version"}
}

// ClearUploadQueue builds the command that empties lpass's pending upload queue.
// A leading ~/ stays unquoted so the shell expands it.
func (b *Builder) ClearUploadQueue(dir string) Command {
	return Command{Line: "rm -f " + util.ShellQuotePreserveTilde(dir) + "/*"}
}

// Passwd is not supported.
func (b *Builder) Passwd() (Command, error) {
	return Command{}, errors.NewNotImplemented("passwd")
}

// Move is not supported.
func (b *Builder) Move() (Command, error) {
	return Command{}, errors.NewNotImplemented("mv")
}

// Generate is not supported.
func (b *Builder) Generate() (Command, error) {
	return Command{}, errors.NewNotImplemented("generate")
}

// Duplicate is not supported.
func (b *Builder) Duplicate() (Command, error) {
	return Command{}, errors.NewNotImplemented("duplicate")
}

// Share is not supported.
func (b *Builder) Share() (Command, error) {
	return Command{}, errors.NewNotImplemented("share")
}

// piped feeds block to the lpass subcommand through printf inside double quotes.
func (b *Builder) piped(block, subcommand string) Command {
	return Command{
		Line:      `printf '%s' "` + block + `" | ` + b.Binary + subcommand,
		Sensitive: true,
	}
}

// validateID guards the unquoted id slot of edit/rm.
func validateID(id string) error {
	if !util.IsDigits(id) {
		return errors.New(errors.ErrInput,
			fmt.Sprintf("Invalid entry id %q", id),
			"Entry ids are numeric, e.g. 1234567890")
	}
	return nil
}
