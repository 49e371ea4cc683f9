package lastpass

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/lp/internal/command"
	"github.com/rileyhilliard/lp/internal/errors"
)

// AccountParams sets account fields. Empty strings leave a field untouched.
// A Name of the form "group/name" also sets the group; an explicit Group wins.
type AccountParams struct {
	Name     string
	Username string
	Password string
	URL      string
	Notes    string
	Group    string
}

// Account is a LastPass site entry.
type Account struct {
	Name     string
	Username string
	Password string
	URL      string
	Notes    string

	id    string
	group string
	// path is the full name lpass knows the entry by, e.g. "A/B/Server".
	path    string
	deleted bool
	backend Backend
}

func accountFromRecord(backend Backend, r Record) *Account {
	a := &Account{backend: backend, id: r.ID, path: r.Name}
	a.apply(AccountParams{
		Name:     r.Name,
		Username: value(r.Username),
		Password: value(r.Password),
		URL:      value(r.URL),
		Notes:    value(r.Notes),
	})
	return a
}

// ID returns the lpass id, or "" for an unsaved account.
func (a *Account) ID() string { return a.id }

// Group returns the folder the account lives in, or "".
func (a *Account) Group() string { return a.group }

// Deleted reports whether Delete has succeeded on this account.
func (a *Account) Deleted() bool { return a.deleted }

// Update applies params and saves. The group cannot be changed this way,
// except through a "group/name" Name.
func (a *Account) Update(params AccountParams) error {
	if err := a.checkDeleted(); err != nil {
		return err
	}
	params.Group = ""
	a.apply(params)
	return a.Save()
}

// Save writes the account. An unsaved account is created and its id resolved.
func (a *Account) Save() error {
	if err := a.checkDeleted(); err != nil {
		return err
	}

	if a.id != "" {
		if _, err := a.backend.Edit(a.id, a.fields(true)); err != nil {
			return err
		}
		a.path = a.qualifiedName()
		return nil
	}

	if _, err := a.backend.Add(a.Name, a.fields(false)); err != nil {
		return err
	}
	a.path = a.qualifiedName()
	id, err := a.backend.ResolveID(a.qualifiedName())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrAmbiguous,
			"Unable to fetch ID of newly created account",
			"The account name may not be unique")
	}
	a.id = id
	return nil
}

// Patch writes only the fields set in f and leaves every other field in lpass
// untouched. Prefer it over Update for accounts loaded from lpass: parsed
// notes keep only their first line, and Update would write that back.
//
// A Name without a slash renames the entry in place, keeping its full folder
// path. f.Group is ignored.
func (a *Account) Patch(f Fields) error {
	if err := a.checkDeleted(); err != nil {
		return err
	}
	if a.id == "" {
		return errors.New(errors.ErrInput, "Account has not been saved yet",
			"Use Save to create it first")
	}
	if f.Empty() {
		return errors.New(errors.ErrInput, "Nothing to change", "")
	}

	f.Group = nil
	if f.Name != nil {
		f.Name = command.Ptr(a.renamedPath(*f.Name))
	}
	if _, err := a.backend.Edit(a.id, f); err != nil {
		return err
	}

	if f.Name != nil {
		a.path = *f.Name
		group, name, _ := splitName(a.path)
		a.Name, a.group = name, group
	}
	a.Username = override(a.Username, f.Username)
	a.Password = override(a.Password, f.Password)
	a.URL = override(a.URL, f.URL)
	a.Notes = override(a.Notes, f.Notes)
	return nil
}

// Delete removes the account from the vault. Any later mutation fails.
func (a *Account) Delete() error {
	if err := a.checkDeleted(); err != nil {
		return err
	}
	if _, err := a.backend.Remove(a.id); err != nil {
		return err
	}
	a.deleted = true
	return nil
}

// ToMap returns the set fields keyed by lower-case name.
func (a *Account) ToMap() map[string]string {
	m := make(map[string]string)
	for _, kv := range []struct{ k, v string }{
		{"id", a.id},
		{"name", a.Name},
		{"username", a.Username},
		{"password", a.Password},
		{"url", a.URL},
		{"notes", a.Notes},
		{"group", a.group},
	} {
		if kv.v != "" {
			m[kv.k] = kv.v
		}
	}
	return m
}

// String never prints field values.
func (a *Account) String() string {
	return "lastpass.Account{}"
}

// GoString never prints field values.
func (a *Account) GoString() string {
	return a.String()
}

func (a *Account) apply(p AccountParams) {
	if p.Name != "" {
		group, name, ok := splitName(p.Name)
		a.Name = name
		if ok {
			a.group = group
		}
	}
	if p.Group != "" {
		a.group = p.Group
	}
	if p.Username != "" {
		a.Username = p.Username
	}
	if p.Password != "" {
		a.Password = p.Password
	}
	if p.URL != "" {
		a.URL = p.URL
	}
	if p.Notes != "" {
		a.Notes = p.Notes
	}
}

// fields converts the account for add/edit. Name only travels on edit; add
// takes it as the target argument.
func (a *Account) fields(withName bool) Fields {
	f := Fields{
		Username: optional(a.Username),
		Password: optional(a.Password),
		URL:      optional(a.URL),
		Notes:    optional(a.Notes),
		Group:    optional(a.group),
	}
	if withName {
		f.Name = optional(a.Name)
	}
	return f
}

func (a *Account) qualifiedName() string {
	if a.group == "" {
		return a.Name
	}
	return a.group + "/" + a.Name
}

// renamedPath puts name in the folder the entry currently lives in, unless
// name carries its own folder.
func (a *Account) renamedPath(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	if i := strings.LastIndex(a.path, "/"); i >= 0 {
		return a.path[:i+1] + name
	}
	if a.group != "" {
		return a.group + "/" + name
	}
	return name
}

func (a *Account) checkDeleted() error {
	if !a.deleted {
		return nil
	}
	return errors.New(errors.ErrDeleted,
		fmt.Sprintf("Account [ID:%s] has been deleted!", a.id),
		"Look the account up again or create a new one")
}

// splitName infers a group from "group/name". Only the first and last
// segments are kept; trailing slashes are ignored.
func splitName(s string) (group, name string, ok bool) {
	parts := strings.Split(s, "/")
	for len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 1 {
		return "", parts[0], false
	}
	return parts[0], parts[len(parts)-1], true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return command.Ptr(s)
}

func override(current string, p *string) string {
	if p == nil {
		return current
	}
	return *p
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
