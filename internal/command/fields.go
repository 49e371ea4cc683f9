package command

import (
	"strings"

	"github.com/rileyhilliard/lp/internal/util"
)

// Fields is the set of entry fields lpass add/edit accept on stdin.
// A nil pointer means "leave out", which is different from an empty value.
type Fields struct {
	Name     *string
	Username *string
	Password *string
	URL      *string
	Notes    *string
	// Group is not a field lpass understands; it becomes the "group/" prefix
	// of the entry name.
	Group *string
}

// Ptr returns a pointer to s. Handy for building Fields literals.
func Ptr(s string) *string {
	return &s
}

// Block renders the fields as the newline separated "Key: value" payload.
// Values are escaped for a double-quoted shell string. Notes go last because
// lpass treats everything after "Notes:" as the note body.
func (f Fields) Block() string {
	var lines []string
	add := func(key string, value *string) {
		if value == nil {
			return
		}
		lines = append(lines, key+": "+util.EscapeDoubleQuoted(*value))
	}

	add("Name", f.Name)
	add("Username", f.Username)
	add("Password", f.Password)
	add("URL", f.URL)
	if f.Notes != nil {
		lines = append(lines, "Notes: \n"+util.EscapeDoubleQuoted(*f.Notes))
	}

	return strings.Join(lines, "\n")
}

// Empty reports whether no lpass field is set. Group alone does not count.
func (f Fields) Empty() bool {
	return f.Name == nil && f.Username == nil && f.Password == nil && f.URL == nil && f.Notes == nil
}
