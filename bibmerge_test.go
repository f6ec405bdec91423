package bibmerge_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bibmerge"
	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/collisions"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/reconcile"
)

func msn() *bibliography.Dataset {
	return bibliography.NewDataset("msn", []bibliography.Record{
		{"ID": "MR1", "author": "Smith, John A.", "year": "1999", "title": "The Widget Problem.", "mrnumber": "1"},
		{"ID": "MR2", "author": "Doe, Jane", "year": "2001", "title": "Gadgets"},
	})
}

func zbl() *bibliography.Dataset {
	return bibliography.NewDataset("zbl", []bibliography.Record{
		{"ID": "Zbl9", "author": "Roe, R.", "year": "2005", "title": "Sprockets"},
		{"ID": "Zbl1", "author": "J. A. Smith", "year": "1999", "title": "the widget problem", "zbl": "0901.1"},
	})
}

func TestNewRejectsBadSelectors(t *testing.T) {
	_, err := bibmerge.New(bibmerge.WithSelectors("normauthor", "normyear"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidSelector(err))

	_, err = bibmerge.New(bibmerge.WithWorkers(-1))
	assert.True(t, errors.IsValidationError(err))
}

func TestClientMerge(t *testing.T) {
	bm, err := bibmerge.New()
	require.NoError(t, err)
	assert.Equal(t, []string{"normauthor", "year", "normtitle"}, bm.Selectors())

	var merged []*reconcile.Result
	bm.OnMerged(func(r *reconcile.Result) { merged = append(merged, r) })

	outcome, err := bm.Merge(context.Background(), msn(), zbl())
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Empty(t, outcome.Collisions)

	assert.Equal(t, 1, outcome.Result.Stats.Matched)
	want := []bibliography.Record{
		{"ID": "MR1", "author": "Smith, John A.", "year": "1999", "title": "The Widget Problem.", "mrnumber": "1", "zbl": "0901.1"},
		{"ID": "MR2", "author": "Doe, Jane", "year": "2001", "title": "Gadgets"},
		{"ID": "Zbl9", "author": "Roe, R.", "year": "2005", "title": "Sprockets"},
	}
	if diff := cmp.Diff(want, outcome.Output.Records); diff != "" {
		t.Errorf("Merge() output mismatch (-want +got):\n%s", diff)
	}
}

func TestClientMergeOptions(t *testing.T) {
	bm, err := bibmerge.New(
		bibmerge.WithDirection(reconcile.RightToLeft),
		bibmerge.WithUnion(false),
		bibmerge.WithKeepKey(true),
	)
	require.NoError(t, err)

	outcome, err := bm.Merge(context.Background(), msn(), zbl())
	require.NoError(t, err)
	assert.Equal(t, "zbl", outcome.Output.Name)
	require.Len(t, outcome.Output.Records, 2)
	assert.Equal(t, "Zbl9", outcome.Output.Records[0].ID())
	assert.Equal(t, "Zbl1", outcome.Output.Records[1].ID())
	assert.Equal(t, "1", outcome.Output.Records[1]["mrnumber"])
	assert.Equal(t, "smith,j|1999|widget problem", outcome.Output.Records[1]["mergekey"])
}

func TestClientCollisions(t *testing.T) {
	dup := bibliography.NewDataset("dup", []bibliography.Record{
		{"ID": "a", "author": "Smith, J", "year": "1999", "title": "Widgets"},
		{"ID": "b", "author": "J. Smith", "year": "1999", "title": "The Widgets"},
	})
	single := bibliography.NewDataset("single", []bibliography.Record{
		{"ID": "c", "author": "Smith, John", "year": "1999", "title": "widgets"},
	})

	lenient, err := bibmerge.New()
	require.NoError(t, err)
	var reports []*collisions.Report
	lenient.OnCollision(func(r *collisions.Report) { reports = append(reports, r) })

	outcome, err := lenient.Merge(context.Background(), dup, single)
	require.NoError(t, err)
	require.Len(t, outcome.Collisions, 1)
	require.Len(t, reports, 1)
	assert.Equal(t, "dup", reports[0].Dataset)
	assert.Equal(t, 1, outcome.Result.Stats.Matched)
	assert.Equal(t, []string{"a", "b"}, ids(outcome.Output.Records))

	strict, err := bibmerge.New(bibmerge.WithStrict(true))
	require.NoError(t, err)
	outcome, err = strict.Merge(context.Background(), dup, single)
	require.Error(t, err)
	assert.True(t, errors.IsNonUniqueKeys(err))
	require.NotNil(t, outcome)
	assert.Len(t, outcome.Collisions, 1)
}

func TestClientMergeAll(t *testing.T) {
	bm, err := bibmerge.New()
	require.NoError(t, err)

	third := bibliography.NewDataset("arxiv", []bibliography.Record{
		{"ID": "ax1", "author": "Doe, J.", "year": "2001", "title": "Gadgets.", "eprint": "math/0101"},
	})
	outcome, err := bm.MergeAll(context.Background(), msn(), zbl(), third)
	require.NoError(t, err)
	assert.Equal(t, "msn", outcome.Output.Name)
	assert.Equal(t, []string{"MR1", "MR2", "Zbl9"}, ids(outcome.Output.Records))
	assert.Equal(t, "math/0101", outcome.Output.Records[1]["eprint"])

	outcome, err = bm.MergeAll(context.Background(), msn())
	require.NoError(t, err)
	assert.Equal(t, []string{"MR1", "MR2"}, ids(outcome.Output.Records))

	_, err = bm.MergeAll(context.Background())
	assert.Error(t, err)
}

func TestClientUnionAndPersistence(t *testing.T) {
	bm, err := bibmerge.New()
	require.NoError(t, err)

	u := bm.Union(msn(), bibliography.NewDataset("more", []bibliography.Record{
		{"ID": "MR2", "pages": "1--10"},
		{"ID": "MR3", "title": "New"},
	}))
	assert.Equal(t, []string{"MR1", "MR2", "MR3"}, ids(u.Records))
	assert.Equal(t, "1--10", u.Records[1]["pages"])

	path := filepath.Join(t.TempDir(), "union.bib")
	require.NoError(t, bm.Save(u, path, ""))
	loaded, err := bm.Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "union", loaded.Name)
	assert.Equal(t, ids(u.Records), ids(loaded.Records))
}

func ids(records []bibliography.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}
