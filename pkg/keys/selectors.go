// Package keys turns a list of selectors into composite join keys.
//
// A selector is either a raw field name ("year", "ID") whose value is
// taken verbatim, or a normalized field name ("normauthor", "normtitle")
// whose value is computed from a source field by a registered normalizer
// and attached to the record before key assembly.
package keys

import (
	"maps"
	"slices"
	"strings"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/constants"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/normalize"
)

type normalizer struct {
	source string
	fn     normalize.Func
}

var normalizers = map[string]normalizer{
	constants.FieldNormAuthor: {source: constants.FieldAuthor, fn: normalize.NormalizeAuthor},
	constants.FieldNormTitle:  {source: constants.FieldTitle, fn: normalize.NormalizeTitle},
}

// Known returns the registered normalized selector names, sorted.
func Known() []string {
	return slices.Sorted(maps.Keys(normalizers))
}

// Selector is one resolved key component.
type Selector struct {
	// Name is the selector as configured; normalized values are attached
	// to the record under this name.
	Name string

	// Source is the raw field read to produce the component.
	Source string

	normalize normalize.Func
}

// Normalized reports whether the selector derives its value from Source.
func (s Selector) Normalized() bool {
	return s.normalize != nil
}

// String implements fmt.Stringer.
func (s Selector) String() string {
	return s.Name
}

// ParseSelector resolves a single selector name. Every name starting with
// "norm" is reserved for normalizers: one that is not registered is an
// error even when records carry a raw field of that name, such as
// normalized_by.
func ParseSelector(name string) (Selector, error) {
	if name == "" {
		return Selector{}, errors.NewSelectorError(name, nil)
	}
	if !strings.HasPrefix(name, constants.NormPrefix) {
		return Selector{Name: name, Source: name}, nil
	}
	n, ok := normalizers[name]
	if !ok {
		return Selector{}, errors.NewSelectorError(name, Known())
	}
	return Selector{Name: name, Source: n.source, normalize: n.fn}, nil
}

// ParseSelectors resolves every selector in order. The first invalid
// selector aborts parsing; order and duplicates are preserved.
func ParseSelectors(names []string) ([]Selector, error) {
	out := make([]Selector, 0, len(names))
	for _, name := range names {
		s, err := ParseSelector(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Names returns the configured names of selectors.
func Names(selectors []Selector) []string {
	names := make([]string, len(selectors))
	for i, s := range selectors {
		names[i] = s.Name
	}
	return names
}

// BuildKey computes the key of r under selectors. Normalized values are
// written into r under the selector name before assembly. A missing
// source field yields an empty component and attaches nothing.
func BuildKey(r bibliography.Record, selectors []Selector) bibliography.Key {
	components := make([]string, len(selectors))
	for i, s := range selectors {
		raw, ok := r.Get(s.Source)
		if !ok {
			continue
		}
		if s.Normalized() {
			raw = s.normalize(raw)
			r[s.Name] = raw
		}
		components[i] = raw
	}
	return bibliography.Key{Components: components}
}
