// Package collisions detects records that share a join key within one
// dataset.
//
// Collisions are diagnostics, not failures: Validate never drops or
// reorders records. Callers that want strict behavior turn a non-empty
// Report into an error with Report.Err.
package collisions

import (
	"fmt"
	"strings"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/constants"
	"github.com/agentstation/bibmerge/pkg/errors"
)

// Collision is a group of two or more records sharing a key.
type Collision struct {
	Key     string                `json:"key" yaml:"key"`
	Indexes []int                 `json:"indexes" yaml:"indexes"`
	Records []bibliography.Record `json:"records" yaml:"records"`
}

// IDs returns the identifiers of the colliding records.
func (c Collision) IDs() []string {
	ids := make([]string, len(c.Records))
	for i, r := range c.Records {
		ids[i] = r.ID()
	}
	return ids
}

// Report lists every key collision in a dataset.
type Report struct {
	Dataset    string      `json:"dataset" yaml:"dataset"`
	Selectors  []string    `json:"selectors,omitempty" yaml:"selectors,omitempty"`
	Records    int         `json:"records" yaml:"records"`
	Collisions []Collision `json:"collisions" yaml:"collisions"`
}

// Empty reports whether every key in the dataset is unique.
func (r *Report) Empty() bool {
	return r == nil || len(r.Collisions) == 0
}

// Count returns the number of colliding keys.
func (r *Report) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Collisions)
}

// Affected returns the number of records involved in any collision.
func (r *Report) Affected() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, c := range r.Collisions {
		n += len(c.Records)
	}
	return n
}

// Keys returns the colliding key tokens in report order.
func (r *Report) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.Collisions))
	for i, c := range r.Collisions {
		keys[i] = c.Key
	}
	return keys
}

// Err returns a *errors.CollisionError when the report is not empty.
// At most constants.MaxReportedKeys keys are listed in the message.
func (r *Report) Err() error {
	if r.Empty() {
		return nil
	}
	keys := r.Keys()
	if len(keys) > constants.MaxReportedKeys {
		keys = append(keys[:constants.MaxReportedKeys:constants.MaxReportedKeys],
			fmt.Sprintf("... (%d more)", len(r.Collisions)-constants.MaxReportedKeys))
	}
	return errors.NewCollisionError(r.Dataset, keys)
}

// String renders a short human-readable listing.
func (r *Report) String() string {
	if r.Empty() {
		name := ""
		if r != nil {
			name = r.Dataset
		}
		return fmt.Sprintf("%s: all keys unique", name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d non-unique keys (%d records)\n", r.Dataset, r.Count(), r.Affected())
	for _, c := range r.Collisions {
		fmt.Fprintf(&b, "  %q: %s\n", c.Key, strings.Join(c.IDs(), ", "))
	}
	return b.String()
}

// Validate groups the records of a keyed dataset by key and reports every
// group with more than one member. Groups are ordered by the position of
// their first member; members keep dataset order.
func Validate(ds *bibliography.Dataset) (*Report, error) {
	if ds == nil {
		return &Report{}, nil
	}
	if !ds.Keyed() {
		return nil, errors.NewValidationError("dataset", ds.Name, "dataset has not been keyed")
	}

	groups := make(map[string][]int, len(ds.Records))
	var order []string
	for i := range ds.Records {
		k := ds.KeyAt(i).String()
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	report := &Report{
		Dataset:   ds.Name,
		Selectors: ds.Selectors,
		Records:   ds.Len(),
	}
	for _, k := range order {
		idx := groups[k]
		if len(idx) < 2 {
			continue
		}
		c := Collision{Key: k, Indexes: idx, Records: make([]bibliography.Record, len(idx))}
		for j, i := range idx {
			c.Records[j] = ds.Records[i]
		}
		report.Collisions = append(report.Collisions, c)
	}
	return report, nil
}
