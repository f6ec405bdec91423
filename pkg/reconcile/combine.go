package reconcile

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/constants"
)

// CombineOptions controls how a Result becomes an output dataset.
type CombineOptions struct {
	// Name of the output dataset; defaults to the left dataset name.
	Name string

	// Union appends right-only records after the left records.
	Union bool

	// KeepKey keeps the merge key and the normalized fields attached
	// during keying.
	KeepKey bool
}

// Combine flattens a merge result into one dataset. A matched pair
// becomes the right record overlaid with the left record's fields, so
// left values win. Matched and left-only records appear in left order;
// right-only records follow in right order when opts.Union is set.
// The records of r are not modified.
func Combine(r *Result, opts CombineOptions) *bibliography.Dataset {
	type entry struct {
		pos    int
		record bibliography.Record
	}
	entries := make([]entry, 0, len(r.Matched)+len(r.LeftOnly))
	for _, p := range r.Matched {
		entries = append(entries, entry{pos: p.LeftIndex, record: Overlay(p.Right, p.Left)})
	}
	for i, rec := range r.LeftOnly {
		pos := i
		if i < len(r.LeftOnlyIndexes) {
			pos = r.LeftOnlyIndexes[i]
		}
		entries = append(entries, entry{pos: pos, record: rec.Clone()})
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.pos, b.pos)
	})

	name := opts.Name
	if name == "" {
		name = r.Left
	}
	records := make([]bibliography.Record, 0, len(entries)+len(r.RightOnly))
	for _, e := range entries {
		records = append(records, e.record)
	}
	if opts.Union {
		for _, rec := range r.RightOnly {
			records = append(records, rec.Clone())
		}
	}
	if !opts.KeepKey {
		for _, rec := range records {
			StripDerived(rec, r.Selectors)
		}
	}
	return bibliography.NewDataset(name, records)
}

// Overlay returns a copy of base with every field of top written over it.
func Overlay(base, top bibliography.Record) bibliography.Record {
	out := base.Clone()
	for k, v := range top {
		out[k] = v
	}
	return out
}

// StripDerived removes the merge key and the normalized fields named by
// selectors from rec.
func StripDerived(rec bibliography.Record, selectors []string) {
	delete(rec, constants.FieldMergeKey)
	StripNormalized(rec, selectors)
}

// StripNormalized removes the normalized fields named by selectors from
// rec and keeps the merge key.
func StripNormalized(rec bibliography.Record, selectors []string) {
	for _, s := range selectors {
		if strings.HasPrefix(s, constants.NormPrefix) {
			delete(rec, s)
		}
	}
}
