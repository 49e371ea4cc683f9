// Package parser turns the text printed by "lpass show" into Records.
//
// lpass prints a flat sequence of lines. A line of the form
//
//	<name> [id: <digits>]
//
// opens an entry; every following "Field: value" line belongs to that entry
// until the next such line:
//
//	GroupName/ [id: 1111111111111111111]
//	Name: GroupName/
//
//	EntryName [id: 2222222222222222222]
//	Username: someuser
//	URL: http://example.com
//
// A note body line that itself looks like "<text> [id: <digits>]" is read as a
// new entry; lpass gives no way to tell the two apart.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/util"
)

var (
	parentPattern = regexp.MustCompile(`^(.+)\s\[id:\s(\d+)\]$`)
	childPattern  = regexp.MustCompile(`^(\w+):\s(.*)$`)
)

// idMarker appears in parent lines; child lines must not contain it.
const idMarker = " [id: "

// MultipleMatches is what lpass prints when a name lookup is not unique.
const MultipleMatches = "Multiple matches found"

// Options controls parsing.
type Options struct {
	// WithPasswords keeps "Password:" lines. When false the password field is
	// never set on any record.
	WithPasswords bool
}

// Parse converts raw lpass output into records, ordered by the first
// appearance of each id. A repeated id reopens the existing record: its name
// is replaced and later fields overwrite earlier ones.
func Parse(raw string, opts Options) []Record {
	var (
		arena   []Record
		index   = make(map[string]int)
		current = -1
	)

	for _, line := range strings.Split(raw, "\n") {
		if m := parentPattern.FindStringSubmatch(line); m != nil {
			name, id := m[1], m[2]
			if i, ok := index[id]; ok {
				arena[i].Name = name
				current = i
				continue
			}
			arena = append(arena, newRecord(id, name))
			current = len(arena) - 1
			index[id] = current
			continue
		}

		if line == "" || current < 0 || strings.Contains(line, idMarker) {
			continue
		}

		m := childPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.ToLower(m[1])
		if key == KeyPassword && !opts.WithPasswords {
			continue
		}
		arena[current].Set(key, m[2])
	}

	return arena
}

// ParseID validates the output of "lpass show --id": exactly one numeric id.
func ParseID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	switch {
	case id == "":
		return "", errors.New(errors.ErrAmbiguous,
			"Lookup returned no id",
			"The entry may not have been created, or its name is not unique")
	case strings.Contains(id, MultipleMatches):
		return "", errors.New(errors.ErrAmbiguous,
			fmt.Sprintf("Lookup matched more than one entry. Response: %s", id),
			"Give the entry a unique name (or group/name)")
	case !util.IsDigits(id):
		return "", errors.New(errors.ErrAmbiguous,
			fmt.Sprintf("Lookup returned an unexpected response: %q", id),
			"Expected a single numeric id from 'lpass show --id'")
	}
	return id, nil
}
