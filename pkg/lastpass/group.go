package lastpass

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/parser"
)

// Group is a LastPass folder. Name never carries the trailing slash lpass
// prints for folders.
type Group struct {
	Name string

	id      string
	deleted bool
	backend Backend
}

func newGroup(backend Backend, id, name string) *Group {
	return &Group{
		Name:    strings.TrimSuffix(name, parser.GroupSuffix),
		id:      id,
		backend: backend,
	}
}

func groupFromRecord(backend Backend, r Record) *Group {
	return newGroup(backend, r.ID, r.Name)
}

// ID returns the lpass id, or "" for an unsaved group.
func (g *Group) ID() string { return g.id }

// Deleted reports whether Delete has succeeded on this group.
func (g *Group) Deleted() bool { return g.deleted }

// Update renames the group and saves. An empty name only saves.
func (g *Group) Update(name string) error {
	if err := g.checkDeleted(); err != nil {
		return err
	}
	if name != "" {
		g.Name = strings.TrimSuffix(name, parser.GroupSuffix)
	}
	return g.Save()
}

// Save writes the group. An unsaved group is created and its id resolved.
func (g *Group) Save() error {
	if err := g.checkDeleted(); err != nil {
		return err
	}

	if g.id != "" {
		_, err := g.backend.EditGroup(g.id, g.Name)
		return err
	}

	if _, err := g.backend.AddGroup(g.Name); err != nil {
		return err
	}
	id, err := g.backend.ResolveID(g.Name + parser.GroupSuffix)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrAmbiguous,
			"Unable to fetch ID of newly created group",
			"The group name may not be unique")
	}
	g.id = id
	return nil
}

// Delete removes the folder entry. Accounts inside it are left alone.
func (g *Group) Delete() error {
	if err := g.checkDeleted(); err != nil {
		return err
	}
	if _, err := g.backend.Remove(g.id); err != nil {
		return err
	}
	g.deleted = true
	return nil
}

// ToMap returns the set fields keyed by lower-case name.
func (g *Group) ToMap() map[string]string {
	m := make(map[string]string, 2)
	if g.id != "" {
		m["id"] = g.id
	}
	if g.Name != "" {
		m["name"] = g.Name
	}
	return m
}

// String never prints field values.
func (g *Group) String() string {
	return "lastpass.Group{}"
}

// GoString never prints field values.
func (g *Group) GoString() string {
	return g.String()
}

func (g *Group) checkDeleted() error {
	if !g.deleted {
		return nil
	}
	return errors.New(errors.ErrDeleted,
		fmt.Sprintf("Group [ID:%s] has been deleted!", g.id),
		"Look the group up again or create a new one")
}
