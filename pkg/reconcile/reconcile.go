// Package reconcile joins two keyed datasets.
//
// Merge is a directional outer join: every left record yields at most one
// matched pair, duplicate keys on the right are consumed in dataset order,
// and whatever is left over lands in the left-only or right-only
// partition. Swapping the inputs generally changes the result.
package reconcile

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/errors"
)

// Direction selects which dataset plays the left role.
type Direction int

const (
	// LeftToRight keeps the datasets in the order given.
	LeftToRight Direction = iota
	// RightToLeft swaps the datasets before merging.
	RightToLeft
)

// String returns the flag spelling of the direction.
func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "left"
	case RightToLeft:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "left" or "right".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return LeftToRight, nil
	case "right":
		return RightToLeft, nil
	default:
		return LeftToRight, errors.NewValidationError("direction", s, `must be "left" or "right"`)
	}
}

// Pair is a matched left and right record.
type Pair struct {
	Key        string              `json:"key" yaml:"key"`
	LeftIndex  int                 `json:"left_index" yaml:"left_index"`
	RightIndex int                 `json:"right_index" yaml:"right_index"`
	Left       bibliography.Record `json:"left" yaml:"left"`
	Right      bibliography.Record `json:"right" yaml:"right"`
}

// Merge joins left with right. Both datasets must be keyed with the same
// selectors. Neither input is modified; the result shares their records,
// so callers clone before mutating.
func Merge(left, right *bibliography.Dataset) (*Result, error) {
	start := time.Now()
	if err := checkInputs(left, right); err != nil {
		return nil, err
	}

	// Right index: key token to positions, in dataset order. next[k] is the
	// first member of group k not yet consumed.
	index := make(map[string][]int, right.Len())
	for i := range right.Records {
		k := right.KeyAt(i).String()
		index[k] = append(index[k], i)
	}
	next := make(map[string]int, len(index))
	consumed := make([]bool, right.Len())

	result := &Result{
		Left:      left.Name,
		Right:     right.Name,
		Selectors: slices.Clone(left.Selectors),
	}
	for li, lr := range left.Records {
		k := left.KeyAt(li).String()
		group := index[k]
		pos := next[k]
		if pos >= len(group) {
			result.LeftOnly = append(result.LeftOnly, lr)
			result.LeftOnlyIndexes = append(result.LeftOnlyIndexes, li)
			continue
		}
		if len(group) > 1 {
			result.Stats.Ambiguous++
		}
		ri := group[pos]
		next[k] = pos + 1
		consumed[ri] = true
		result.Matched = append(result.Matched, Pair{
			Key:        k,
			LeftIndex:  li,
			RightIndex: ri,
			Left:       lr,
			Right:      right.Records[ri],
		})
	}
	for ri, rr := range right.Records {
		if !consumed[ri] {
			result.RightOnly = append(result.RightOnly, rr)
			result.RightOnlyIndexes = append(result.RightOnlyIndexes, ri)
		}
	}

	result.Stats.LeftRecords = left.Len()
	result.Stats.RightRecords = right.Len()
	result.Stats.Matched = len(result.Matched)
	result.Stats.LeftOnly = len(result.LeftOnly)
	result.Stats.RightOnly = len(result.RightOnly)
	result.Stats.Duration = time.Since(start)
	return result, nil
}

// MergeDirected merges a and b with the roles chosen by dir.
func MergeDirected(a, b *bibliography.Dataset, dir Direction) (*Result, error) {
	switch dir {
	case LeftToRight:
		return Merge(a, b)
	case RightToLeft:
		return Merge(b, a)
	default:
		return nil, errors.NewValidationError("direction", dir, "unknown direction")
	}
}

func checkInputs(left, right *bibliography.Dataset) error {
	name := func(d *bibliography.Dataset) string {
		if d == nil {
			return "<nil>"
		}
		return d.Name
	}
	switch {
	case left == nil || right == nil:
		return errors.NewMergeError(name(left), name(right), errors.ErrInvalidInput)
	case !left.Keyed():
		return errors.NewMergeError(left.Name, right.Name,
			errors.NewValidationError("left", left.Name, "dataset has not been keyed"))
	case !right.Keyed():
		return errors.NewMergeError(left.Name, right.Name,
			errors.NewValidationError("right", right.Name, "dataset has not been keyed"))
	case !slices.Equal(left.Selectors, right.Selectors):
		return errors.NewMergeError(left.Name, right.Name,
			errors.NewValidationError("selectors", right.Selectors,
				fmt.Sprintf("keyed with %v, expected %v", right.Selectors, left.Selectors)))
	}
	return nil
}
