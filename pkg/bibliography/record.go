// Package bibliography defines the data model shared by the keying,
// validation and merge stages: field-mapped records, ordered datasets and
// composite join keys.
package bibliography

import (
	"maps"
	"slices"
	"strings"

	"github.com/agentstation/bibmerge/pkg/constants"
)

// Record is one bibliographic entry: a mapping from field name to raw text.
// Derived fields (normalized author/title, merge key) live alongside the
// raw ones; raw fields are never rewritten.
type Record map[string]string

// Get returns the value of field and whether it is present.
func (r Record) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// ID returns the record identifier, or "" when absent.
func (r Record) ID() string {
	return r[constants.FieldID]
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// Fields returns the record's field names in sorted order.
func (r Record) Fields() []string {
	return slices.Sorted(maps.Keys(r))
}

// Key is an ordered tuple of key components, one per selector.
type Key struct {
	Components []string
}

// NewKey builds a key from components. The slice is copied.
func NewKey(components ...string) Key {
	return Key{Components: slices.Clone(components)}
}

// Len returns the number of components.
func (k Key) Len() int {
	return len(k.Components)
}

// String joins the components into the key token. A separator or
// backslash inside a component is escaped with a backslash, so distinct
// keys always have distinct tokens.
func (k Key) String() string {
	parts := make([]string, len(k.Components))
	for i, c := range k.Components {
		parts[i] = keyEscaper.Replace(c)
	}
	return strings.Join(parts, constants.KeySeparator)
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, constants.KeySeparator, `\`+constants.KeySeparator)

// ParseKey splits a key token produced by Key.String back into its
// components.
func ParseKey(token string) Key {
	var (
		components []string
		cur        strings.Builder
	)
	for i := 0; i < len(token); i++ {
		switch {
		case token[i] == '\\' && i+1 < len(token):
			i++
			cur.WriteByte(token[i])
		case strings.HasPrefix(token[i:], constants.KeySeparator):
			components = append(components, cur.String())
			cur.Reset()
			i += len(constants.KeySeparator) - 1
		default:
			cur.WriteByte(token[i])
		}
	}
	return Key{Components: append(components, cur.String())}
}

// Equal reports whether both keys have identical components.
func (k Key) Equal(other Key) bool {
	return slices.Equal(k.Components, other.Components)
}

// IsBlank reports whether every component is empty.
func (k Key) IsBlank() bool {
	for _, c := range k.Components {
		if c != "" {
			return false
		}
	}
	return true
}
