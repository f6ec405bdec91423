package reconcile_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/keys"
	"github.com/agentstation/bibmerge/pkg/reconcile"
)

func keyed(t *testing.T, name string, records ...bibliography.Record) *bibliography.Dataset {
	t.Helper()
	b, err := keys.NewBuilder(nil)
	require.NoError(t, err)
	ds, _, err := b.BuildDataset(context.Background(), bibliography.NewDataset(name, records))
	require.NoError(t, err)
	return ds
}

func widget(id, author, title string) bibliography.Record {
	return bibliography.Record{"ID": id, "author": author, "year": "1999", "title": title}
}

func ids(records []bibliography.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

func pairIDs(pairs []reconcile.Pair) [][2]string {
	out := make([][2]string, len(pairs))
	for i, p := range pairs {
		out[i] = [2]string{p.Left.ID(), p.Right.ID()}
	}
	return out
}

// Two left records share a key with a single right record.
func TestMergeDuplicateLeft(t *testing.T) {
	left := keyed(t, "L",
		widget("L0", "Smith, John", "Widgets"),
		widget("L1", "J. Smith", "The Widgets."),
	)
	right := keyed(t, "R", widget("R0", "Smith, J.", "widgets"))
	require.Equal(t, "smith,j|1999|widgets", left.KeyAt(0).String())
	require.Equal(t, "smith,j|1999|widgets", left.KeyAt(1).String())
	require.Equal(t, "smith,j|1999|widgets", right.KeyAt(0).String())

	lr, err := reconcile.Merge(left, right)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"L0", "R0"}}, pairIDs(lr.Matched))
	assert.Equal(t, []string{"L1"}, ids(lr.LeftOnly))
	assert.Empty(t, lr.RightOnly)

	rl, err := reconcile.Merge(right, left)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"R0", "L0"}}, pairIDs(rl.Matched))
	assert.Equal(t, []string{"L1"}, ids(rl.RightOnly))
	assert.Empty(t, rl.LeftOnly)
	assert.Equal(t, 1, rl.Stats.Ambiguous)
}

func TestMergeDirectionality(t *testing.T) {
	left := keyed(t, "L",
		widget("L0", "Smith, J", "Widgets"),
		widget("L1", "Doe, J", "Gadgets"),
	)
	right := keyed(t, "R",
		widget("R0", "Doe, J", "Gadgets"),
		widget("R1", "Doe, Jane", "Gadgets"),
		widget("R2", "Smith, J", "Widgets"),
	)

	ab, err := reconcile.Merge(left, right)
	require.NoError(t, err)
	ba, err := reconcile.Merge(right, left)
	require.NoError(t, err)

	assert.Equal(t, [][2]string{{"L0", "R2"}, {"L1", "R0"}}, pairIDs(ab.Matched))
	assert.Equal(t, []string{"R1"}, ids(ab.RightOnly))
	assert.Equal(t, [][2]string{{"R0", "L1"}, {"R2", "L0"}}, pairIDs(ba.Matched))
	assert.Equal(t, []string{"R1"}, ids(ba.LeftOnly))
	assert.NotEqual(t, ab.Stats, ba.Stats)
}

func TestMergeSeparatorInRawField(t *testing.T) {
	b, err := keys.NewBuilder([]string{"series", "note"})
	require.NoError(t, err)
	build := func(name string, records ...bibliography.Record) *bibliography.Dataset {
		ds, _, err := b.BuildDataset(context.Background(), bibliography.NewDataset(name, records))
		require.NoError(t, err)
		return ds
	}
	left := build("L", bibliography.Record{"ID": "l1", "series": "A|1999"})
	right := build("R",
		bibliography.Record{"ID": "r1", "series": "A", "note": "1999|"},
		bibliography.Record{"ID": "r2", "series": "A|1999"},
	)

	result, err := reconcile.Merge(left, right)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"l1", "r2"}}, pairIDs(result.Matched))
	assert.Equal(t, []string{"r1"}, ids(result.RightOnly))
}

func TestMergeDirected(t *testing.T) {
	left := keyed(t, "L", widget("L0", "Smith, J", "Widgets"), widget("L1", "Smith, J", "Widgets"))
	right := keyed(t, "R", widget("R0", "Smith, J", "Widgets"))

	res, err := reconcile.MergeDirected(left, right, reconcile.RightToLeft)
	require.NoError(t, err)
	assert.Equal(t, "R", res.Left)
	assert.Equal(t, []string{"L1"}, ids(res.RightOnly))

	dir, err := reconcile.ParseDirection("RIGHT")
	require.NoError(t, err)
	assert.Equal(t, reconcile.RightToLeft, dir)
	assert.Equal(t, "right", dir.String())

	_, err = reconcile.ParseDirection("up")
	assert.True(t, errors.IsValidationError(err))
}

func TestMergeEmpty(t *testing.T) {
	full := keyed(t, "full", widget("a", "A, B", "One"), widget("b", "C, D", "Two"))
	empty := keyed(t, "empty")

	res, err := reconcile.Merge(full, empty)
	require.NoError(t, err)
	assert.Empty(t, res.Matched)
	assert.Equal(t, []string{"a", "b"}, ids(res.LeftOnly))
	assert.Empty(t, res.RightOnly)

	res, err = reconcile.Merge(empty, full)
	require.NoError(t, err)
	assert.Empty(t, res.LeftOnly)
	assert.Equal(t, []string{"a", "b"}, ids(res.RightOnly))
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	left := keyed(t, "L", widget("L0", "Smith, J", "Widgets"), widget("L1", "Doe, J", "Gadgets"))
	right := keyed(t, "R", widget("R0", "Smith, J", "Widgets"))
	leftBefore, rightBefore := left.Clone(), right.Clone()

	res, err := reconcile.Merge(left, right)
	require.NoError(t, err)
	_ = reconcile.Combine(res, reconcile.CombineOptions{Union: true})

	if diff := cmp.Diff(leftBefore.Records, left.Records); diff != "" {
		t.Errorf("left mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(rightBefore.Records, right.Records); diff != "" {
		t.Errorf("right mutated (-want +got):\n%s", diff)
	}
}

func TestMergeRejectsMismatchedInputs(t *testing.T) {
	left := keyed(t, "L", widget("L0", "Smith, J", "Widgets"))

	yearOnly, err := keys.NewBuilder([]string{"year"})
	require.NoError(t, err)
	right, _, err := yearOnly.BuildDataset(context.Background(), bibliography.NewDataset("R", nil))
	require.NoError(t, err)

	_, err = reconcile.Merge(left, right)
	var mergeErr *errors.MergeError
	require.ErrorAs(t, err, &mergeErr)
	assert.True(t, errors.IsValidationError(err))

	_, err = reconcile.Merge(left, bibliography.NewDataset("raw", nil))
	assert.Error(t, err)

	_, err = reconcile.Merge(nil, left)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestMergeConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	authors := []string{"Smith, J", "Doe, J", "Roe, R", "Poe, E"}
	titles := []string{"Widgets", "Gadgets"}

	gen := func(name string, n int) *bibliography.Dataset {
		var records []bibliography.Record
		for i := 0; i < n; i++ {
			records = append(records, bibliography.Record{
				"ID":     fmt.Sprintf("%s%d", name, i),
				"author": authors[rng.Intn(len(authors))],
				"year":   fmt.Sprint(2000 + rng.Intn(2)),
				"title":  titles[rng.Intn(len(titles))],
			})
		}
		return keyed(t, name, records...)
	}

	for round := 0; round < 25; round++ {
		left, right := gen("L", rng.Intn(20)), gen("R", rng.Intn(20))
		for _, res := range []*reconcile.Result{mustMerge(t, left, right), mustMerge(t, right, left)} {
			l, r := res.Stats.LeftRecords, res.Stats.RightRecords
			require.NoError(t, res.Validate(l, r))

			seenLeft, seenRight := map[string]bool{}, map[string]bool{}
			for _, p := range res.Matched {
				assert.Equal(t, p.Key, p.Left["mergekey"])
				assert.Equal(t, p.Key, p.Right["mergekey"])
				assert.False(t, seenLeft[p.Left.ID()])
				assert.False(t, seenRight[p.Right.ID()])
				seenLeft[p.Left.ID()], seenRight[p.Right.ID()] = true, true
			}
			for _, rec := range res.LeftOnly {
				assert.False(t, seenLeft[rec.ID()], "left record in two partitions")
				seenLeft[rec.ID()] = true
			}
			for _, rec := range res.RightOnly {
				assert.False(t, seenRight[rec.ID()], "right record in two partitions")
				seenRight[rec.ID()] = true
			}
			assert.Len(t, seenLeft, l)
			assert.Len(t, seenRight, r)
		}
	}
}

func mustMerge(t *testing.T, left, right *bibliography.Dataset) *reconcile.Result {
	t.Helper()
	res, err := reconcile.Merge(left, right)
	require.NoError(t, err)
	return res
}

func TestResultValidate(t *testing.T) {
	res := &reconcile.Result{LeftOnly: []bibliography.Record{{}}}
	assert.NoError(t, res.Validate(1, 0))
	assert.Error(t, res.Validate(2, 0))
	assert.Error(t, res.Validate(1, 1))
}

func TestResultSummaryAndReport(t *testing.T) {
	left := keyed(t, "msn", widget("L0", "Smith, J", "Widgets"), widget("L1", "Doe, J", "Gadgets"))
	right := keyed(t, "zbl", widget("R0", "Smith, J", "Widgets"))

	res := mustMerge(t, left, right)
	assert.Equal(t, "Merged msn into zbl: 1 matched, 1 left-only, 0 right-only", res.Summary())

	report := res.Report()
	assert.Contains(t, report, "Matched: 1")
	assert.Contains(t, report, "- L1: Gadgets")
	assert.Contains(t, report, "normauthor, year, normtitle")
}

func TestCombine(t *testing.T) {
	left := keyed(t, "L",
		bibliography.Record{"ID": "L0", "author": "Smith, J", "year": "1999", "title": "Widgets", "note": "left"},
		bibliography.Record{"ID": "L1", "author": "Doe, J", "year": "1999", "title": "Gadgets"},
		bibliography.Record{"ID": "L2", "author": "Roe, R", "year": "1999", "title": "Sprockets"},
	)
	right := keyed(t, "R",
		bibliography.Record{"ID": "R0", "author": "Poe, E", "year": "1999", "title": "Ravens"},
		bibliography.Record{"ID": "R1", "author": "Roe, R.", "year": "1999", "title": "sprockets", "mrnumber": "MR2"},
		bibliography.Record{"ID": "R2", "author": "J. Smith", "year": "1999", "title": "The Widgets", "note": "right", "mrnumber": "MR1"},
	)
	res := mustMerge(t, left, right)

	got := reconcile.Combine(res, reconcile.CombineOptions{})
	want := []bibliography.Record{
		{"ID": "L0", "author": "Smith, J", "year": "1999", "title": "Widgets", "note": "left", "mrnumber": "MR1"},
		{"ID": "L1", "author": "Doe, J", "year": "1999", "title": "Gadgets"},
		{"ID": "L2", "author": "Roe, R", "year": "1999", "title": "Sprockets", "mrnumber": "MR2"},
	}
	if diff := cmp.Diff(want, got.Records); diff != "" {
		t.Errorf("Combine() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "L", got.Name)

	union := reconcile.Combine(res, reconcile.CombineOptions{Union: true, KeepKey: true, Name: "out"})
	assert.Equal(t, "out", union.Name)
	assert.Equal(t, []string{"L0", "L1", "L2", "R0"}, ids(union.Records))
	assert.Equal(t, "smith,j|1999|widgets", union.Records[0]["mergekey"])
	assert.Equal(t, "smith,j", union.Records[0]["normauthor"])
	assert.Equal(t, "poe,e|1999|ravens", union.Records[3]["mergekey"])
}

func TestStripNormalized(t *testing.T) {
	selectors := []string{"normauthor", "year", "normtitle"}
	rec := bibliography.Record{
		"ID": "a", "year": "1999", "normauthor": "smith,j", "normtitle": "widgets",
		"normalized_by": "x", "mergekey": "smith,j|1999|widgets",
	}

	kept := rec.Clone()
	reconcile.StripNormalized(kept, selectors)
	assert.Equal(t, bibliography.Record{
		"ID": "a", "year": "1999", "normalized_by": "x", "mergekey": "smith,j|1999|widgets",
	}, kept)

	reconcile.StripDerived(rec, selectors)
	assert.Equal(t, bibliography.Record{"ID": "a", "year": "1999", "normalized_by": "x"}, rec)
}

func TestUnion(t *testing.T) {
	a := bibliography.NewDataset("a", []bibliography.Record{
		{"ID": "x", "title": "X from a"},
		{"title": "no id"},
		{"ID": "y", "title": "Y from a"},
	})
	b := bibliography.NewDataset("b", []bibliography.Record{
		{"ID": "z", "title": "Z from b"},
		{"ID": "x", "title": "X from b", "doi": "10.1/x"},
		{"title": "no id"},
	})
	c := bibliography.NewDataset("c", []bibliography.Record{
		{"ID": "z", "title": "Z from c", "pages": "1--2"},
	})

	got := reconcile.Union(a, b, c)
	want := []bibliography.Record{
		{"ID": "x", "title": "X from a", "doi": "10.1/x"},
		{"title": "no id"},
		{"ID": "y", "title": "Y from a"},
		{"ID": "z", "title": "Z from b", "pages": "1--2"},
		{"title": "no id"},
	}
	if diff := cmp.Diff(want, got.Records); diff != "" {
		t.Errorf("Union() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, "X from b", b.Records[1]["title"], "inputs untouched")
	_, ok := a.Records[0].Get("doi")
	assert.False(t, ok)

	assert.Equal(t, 0, reconcile.Union().Len())
}
