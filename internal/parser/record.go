package parser

import "strings"

// Field keys with a dedicated slot on Record.
const (
	KeyID       = "id"
	KeyName     = "name"
	KeyUsername = "username"
	KeyPassword = "password"
	KeyURL      = "url"
	KeyNotes    = "notes"
)

// GroupSuffix marks a folder entry: lpass prints group names with a trailing slash.
const GroupSuffix = "/"

// Record is one entry reconstructed from lpass output. ID and Name are always
// set on parsed records; the optional fields are nil when the entry lacks them.
type Record struct {
	ID       string
	Name     string
	Username *string
	Password *string
	URL      *string
	Notes    *string
	// Extra holds any other "Field: value" line, keyed by lower-cased field name.
	Extra map[string]string

	order []string
}

// newRecord starts a record for a parent line.
func newRecord(id, name string) Record {
	return Record{ID: id, Name: name, order: []string{KeyID, KeyName}}
}

// Set stores value under the lower-cased key.
func (r *Record) Set(key, value string) {
	key = strings.ToLower(key)
	if !r.Has(key) {
		r.order = append(r.order, key)
	}
	v := value
	switch key {
	case KeyID:
		r.ID = value
	case KeyName:
		r.Name = value
	case KeyUsername:
		r.Username = &v
	case KeyPassword:
		r.Password = &v
	case KeyURL:
		r.URL = &v
	case KeyNotes:
		r.Notes = &v
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[key] = value
	}
}

// Get returns the value stored under key and whether it is present.
func (r Record) Get(key string) (string, bool) {
	switch strings.ToLower(key) {
	case KeyID:
		return r.ID, r.ID != ""
	case KeyName:
		return r.Name, r.Name != ""
	case KeyUsername:
		return deref(r.Username)
	case KeyPassword:
		return deref(r.Password)
	case KeyURL:
		return deref(r.URL)
	case KeyNotes:
		return deref(r.Notes)
	default:
		v, ok := r.Extra[strings.ToLower(key)]
		return v, ok
	}
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns present keys in first-seen order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.order))
	for _, k := range r.order {
		if r.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// IsGroup reports whether the record is a folder rather than an account.
func (r Record) IsGroup() bool {
	return IsGroupName(r.Name)
}

// IsGroupName reports whether an entry name denotes a folder.
func IsGroupName(name string) bool {
	return strings.HasSuffix(name, GroupSuffix)
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
