package lastpass

import (
	"strings"

	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/parser"
	"github.com/rileyhilliard/lp/internal/util"
)

// matchAll is the default FindAll search.
const matchAll = ".*"

// query runs a search and treats "nothing found" as an empty result.
func query(backend Backend, search string, opts QueryOptions) ([]Record, error) {
	records, err := backend.Query(search, opts)
	if errors.IsCode(err, errors.ErrNotFound) {
		return nil, nil
	}
	return records, err
}

// Accounts finds and creates accounts.
type Accounts struct {
	backend Backend
}

// Find returns the first entry matching search (a name or id), or nil when
// nothing matches or the match is a group.
func (a *Accounts) Find(search string, withPassword bool) (*Account, error) {
	records, err := query(a.backend, search, QueryOptions{WithPasswords: withPassword})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	if records[0].IsGroup() {
		return nil, nil
	}
	return accountFromRecord(a.backend, records[0]), nil
}

// FindAll returns every account matching the regular expression search.
// An empty search matches everything.
func (a *Accounts) FindAll(search string, withPasswords bool) ([]*Account, error) {
	if search == "" {
		search = matchAll
	}
	records, err := query(a.backend, search, QueryOptions{Regex: true, WithPasswords: withPasswords})
	if err != nil {
		return nil, err
	}
	accounts := make([]*Account, 0, len(records))
	for _, r := range records {
		if r.IsGroup() {
			continue
		}
		accounts = append(accounts, accountFromRecord(a.backend, r))
	}
	return accounts, nil
}

// Create saves a new account and resolves its id.
func (a *Accounts) Create(params AccountParams) (*Account, error) {
	acct := &Account{backend: a.backend}
	acct.apply(params)
	if err := acct.Save(); err != nil {
		return nil, err
	}
	return acct, nil
}

// String hides the collection's internals.
func (a *Accounts) String() string {
	return "lastpass.Accounts{}"
}

// Groups finds and creates groups (lpass folders).
type Groups struct {
	backend Backend
}

// Find returns the group named search, or the entry with that numeric id if
// it is a group. Slashes in the name are ignored; an all-digit search is an id.
func (g *Groups) Find(search string) (*Group, error) {
	search = strings.ReplaceAll(search, "/", "")
	if !util.IsDigits(search) {
		search += parser.GroupSuffix
	}
	records, err := query(g.backend, search, QueryOptions{})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	if !records[0].IsGroup() {
		return nil, nil
	}
	return groupFromRecord(g.backend, records[0]), nil
}

// FindAll returns every group matching the regular expression search.
// An empty search matches everything.
func (g *Groups) FindAll(search string) ([]*Group, error) {
	if search == "" {
		search = matchAll
	}
	records, err := query(g.backend, search, QueryOptions{Regex: true})
	if err != nil {
		return nil, err
	}
	groups := make([]*Group, 0, len(records))
	for _, r := range records {
		if !r.IsGroup() {
			continue
		}
		groups = append(groups, groupFromRecord(g.backend, r))
	}
	return groups, nil
}

// Create saves a new group and resolves its id.
func (g *Groups) Create(name string) (*Group, error) {
	group := newGroup(g.backend, "", name)
	if err := group.Save(); err != nil {
		return nil, err
	}
	return group, nil
}

// String hides the collection's internals.
func (g *Groups) String() string {
	return "lastpass.Groups{}"
}
