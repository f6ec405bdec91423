package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/constants"
	"github.com/agentstation/bibmerge/pkg/errors"
)

// Result holds the three partitions of a merge.
type Result struct {
	Left      string                `json:"left" yaml:"left"`
	Right     string                `json:"right" yaml:"right"`
	Selectors []string              `json:"selectors" yaml:"selectors"`
	Matched   []Pair                `json:"matched" yaml:"matched"`
	LeftOnly  []bibliography.Record `json:"left_only" yaml:"left_only"`
	RightOnly []bibliography.Record `json:"right_only" yaml:"right_only"`
	Stats     Stats                 `json:"stats" yaml:"stats"`

	// Positions of the unmatched records in their source datasets.
	LeftOnlyIndexes  []int `json:"left_only_indexes" yaml:"left_only_indexes"`
	RightOnlyIndexes []int `json:"right_only_indexes" yaml:"right_only_indexes"`
}

// Stats counts the partitions of a merge.
type Stats struct {
	LeftRecords  int `json:"left_records" yaml:"left_records"`
	RightRecords int `json:"right_records" yaml:"right_records"`
	Matched      int `json:"matched" yaml:"matched"`
	LeftOnly     int `json:"left_only" yaml:"left_only"`
	RightOnly    int `json:"right_only" yaml:"right_only"`

	// Ambiguous counts matches picked from a right group with several
	// members.
	Ambiguous int `json:"ambiguous" yaml:"ambiguous"`

	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Validate checks partition conservation against the input sizes.
func (r *Result) Validate(leftLen, rightLen int) error {
	if got := len(r.Matched) + len(r.LeftOnly); got != leftLen {
		return errors.NewValidationError("left", got,
			fmt.Sprintf("matched %d + left-only %d != %d left records", len(r.Matched), len(r.LeftOnly), leftLen))
	}
	if got := len(r.Matched) + len(r.RightOnly); got != rightLen {
		return errors.NewValidationError("right", got,
			fmt.Sprintf("matched %d + right-only %d != %d right records", len(r.Matched), len(r.RightOnly), rightLen))
	}
	return nil
}

// Summary returns a one-line description of the result.
func (r *Result) Summary() string {
	return fmt.Sprintf("Merged %s into %s: %d matched, %d left-only, %d right-only",
		r.Left, r.Right, len(r.Matched), len(r.LeftOnly), len(r.RightOnly))
}

// Report generates a detailed report of the merge.
func (r *Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, `
Merge Report
============
Left: %s (%d records)
Right: %s (%d records)
Key: %s

`, r.Left, r.Stats.LeftRecords, r.Right, r.Stats.RightRecords, strings.Join(r.Selectors, ", "))

	fmt.Fprintf(&b, `Statistics:
-----------
Matched: %d
Left Only: %d
Right Only: %d
Ambiguous Matches: %d
Duration: %s

`, r.Stats.Matched, r.Stats.LeftOnly, r.Stats.RightOnly, r.Stats.Ambiguous, r.Stats.Duration)

	if len(r.LeftOnly) > 0 {
		fmt.Fprintf(&b, "Left Only (%d):\n", len(r.LeftOnly))
		b.WriteString("-------------\n")
		for _, rec := range r.LeftOnly {
			fmt.Fprintf(&b, "- %s\n", describe(rec))
		}
		b.WriteString("\n")
	}
	if len(r.RightOnly) > 0 {
		fmt.Fprintf(&b, "Right Only (%d):\n", len(r.RightOnly))
		b.WriteString("--------------\n")
		for _, rec := range r.RightOnly {
			fmt.Fprintf(&b, "- %s\n", describe(rec))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func describe(r bibliography.Record) string {
	id := r.ID()
	if id == "" {
		id = "(no ID)"
	}
	if title, ok := r.Get(constants.FieldTitle); ok && title != "" {
		return fmt.Sprintf("%s: %s", id, title)
	}
	return id
}
