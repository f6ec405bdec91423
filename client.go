// Package bibmerge provides the main entry point for reconciling
// bibliographic datasets.
//
// A Client derives a join key for every record from noisy author, year
// and title text, reports records that share a key, and joins two
// datasets directionally: each left record pairs with at most one right
// record, and leftovers are kept apart rather than dropped.
//
// Example usage:
//
//	bm, err := bibmerge.New(
//	    bibmerge.WithSelectors("normauthor", "year", "normtitle"),
//	    bibmerge.WithUnion(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msn, _ := bm.Load("msn.yaml", "")
//	zbl, _ := bm.Load("zbl.bib", "")
//
//	outcome, err := bm.Merge(ctx, msn, zbl)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(outcome.Result.Summary())
//	_ = bm.Save(outcome.Output, "merged.yaml", "")
package bibmerge

import (
	"context"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/collisions"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/keys"
	"github.com/agentstation/bibmerge/pkg/logging"
	"github.com/agentstation/bibmerge/pkg/reconcile"
)

// Compile-time interface checks to ensure proper implementation.
var (
	_ Client    = (*client)(nil)
	_ Keyer     = (*client)(nil)
	_ Validator = (*client)(nil)
	_ Merger    = (*client)(nil)
)

// Client keys, validates and merges bibliographic datasets.
type Client interface {

	// Keyer attaches join keys to datasets
	Keyer

	// Validator reports key collisions
	Validator

	// Merger joins datasets
	Merger

	// Persistence reads and writes dataset files
	Persistence

	// Hooks provides access to event callback registration
	Hooks
}

// Keyer attaches join keys to datasets.
type Keyer interface {
	// Selectors returns the configured key selectors
	Selectors() []string

	// Key returns a keyed copy of ds
	Key(ctx context.Context, ds *bibliography.Dataset) (*bibliography.Dataset, keys.Stats, error)
}

// Validator reports records sharing a key.
type Validator interface {
	// Validate reports collisions in a keyed dataset. In strict mode a
	// non-empty report is returned together with a *errors.CollisionError.
	Validate(ds *bibliography.Dataset) (*collisions.Report, error)
}

// Merger joins datasets.
type Merger interface {
	// Merge keys, validates and joins two datasets
	Merge(ctx context.Context, a, b *bibliography.Dataset) (*Outcome, error)

	// MergeAll folds Merge over datasets from left to right
	MergeAll(ctx context.Context, datasets ...*bibliography.Dataset) (*Outcome, error)

	// Union combines datasets by record ID
	Union(datasets ...*bibliography.Dataset) *bibliography.Dataset
}

// Outcome is the product of a merge run.
type Outcome struct {
	// Result holds the partitions of the last merge step
	Result *reconcile.Result

	// Output is the combined dataset
	Output *bibliography.Dataset

	// Collisions holds one report per keyed input with non-unique keys
	Collisions []*collisions.Report
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	builder *keys.Builder
	hooks   *hooks
}

// New creates a new Client. Selectors are validated here, before any
// record is processed.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	builder, err := keys.NewBuilder(o.selectors, keys.WithWorkers(o.workers))
	if err != nil {
		return nil, err
	}
	return &client{
		options: o,
		builder: builder,
		hooks:   newHooks(),
	}, nil
}

// Selectors returns the configured key selectors.
func (c *client) Selectors() []string {
	return c.builder.Selectors()
}

// Key returns a keyed copy of ds.
func (c *client) Key(ctx context.Context, ds *bibliography.Dataset) (*bibliography.Dataset, keys.Stats, error) {
	return c.builder.BuildDataset(ctx, ds)
}

// Validate reports collisions in ds and fires collision hooks.
func (c *client) Validate(ds *bibliography.Dataset) (*collisions.Report, error) {
	report, err := collisions.Validate(ds)
	if err != nil {
		return nil, err
	}
	c.hooks.triggerCollision(report)
	if c.options.strict {
		return report, report.Err()
	}
	return report, nil
}

// Merge keys both datasets, validates them and joins them in the
// configured direction.
func (c *client) Merge(ctx context.Context, a, b *bibliography.Dataset) (*Outcome, error) {
	return c.merge(ctx, a, b, c.options.direction)
}

func (c *client) merge(ctx context.Context, a, b *bibliography.Dataset, dir reconcile.Direction) (*Outcome, error) {
	ctx = logging.WithOperation(ctx, "merge")
	logger := logging.FromContext(ctx)

	outcome := &Outcome{}
	keyed := make([]*bibliography.Dataset, 2)
	for i, ds := range []*bibliography.Dataset{a, b} {
		if ds == nil {
			return nil, errors.NewMergeError(a.String(), b.String(), errors.ErrInvalidInput)
		}
		k, _, err := c.Key(ctx, ds)
		if err != nil {
			return nil, err
		}
		report, err := c.Validate(k)
		if !report.Empty() {
			outcome.Collisions = append(outcome.Collisions, report)
			logger.Warn().
				Str("dataset", k.Name).
				Int("collisions", report.Count()).
				Msg("Dataset has non-unique keys")
		}
		if err != nil {
			return outcome, err
		}
		keyed[i] = k
	}

	result, err := reconcile.MergeDirected(keyed[0], keyed[1], dir)
	if err != nil {
		return nil, err
	}
	if err := result.Validate(result.Stats.LeftRecords, result.Stats.RightRecords); err != nil {
		return nil, errors.NewMergeError(result.Left, result.Right, err)
	}

	outcome.Result = result
	outcome.Output = reconcile.Combine(result, reconcile.CombineOptions{
		Union:   c.options.union,
		KeepKey: c.options.keepKey,
	})
	c.hooks.triggerMerged(result)

	logger.Debug().
		Str("left", result.Left).
		Str("right", result.Right).
		Str("direction", dir.String()).
		Int("matched", result.Stats.Matched).
		Int("left_only", result.Stats.LeftOnly).
		Int("right_only", result.Stats.RightOnly).
		Int("output", outcome.Output.Len()).
		Msg("Merged datasets")
	return outcome, nil
}

// MergeAll merges datasets pairwise from left to right; each step merges
// the running output with the next dataset. A single dataset is keyed,
// validated and passed through.
func (c *client) MergeAll(ctx context.Context, datasets ...*bibliography.Dataset) (*Outcome, error) {
	switch len(datasets) {
	case 0:
		return nil, errors.NewValidationError("datasets", nil, "at least one dataset is required")
	case 1:
		return c.merge(ctx, datasets[0], bibliography.NewDataset("", nil), reconcile.LeftToRight)
	}

	acc := datasets[0]
	var all []*collisions.Report
	var last *Outcome
	for _, next := range datasets[1:] {
		outcome, err := c.Merge(ctx, acc, next)
		if outcome != nil {
			all = append(all, outcome.Collisions...)
		}
		if err != nil {
			if outcome != nil {
				outcome.Collisions = all
			}
			return outcome, err
		}
		acc, last = outcome.Output, outcome
	}
	last.Collisions = all
	return last, nil
}

// Union combines datasets by record ID; earlier datasets win.
func (c *client) Union(datasets ...*bibliography.Dataset) *bibliography.Dataset {
	return reconcile.Union(datasets...)
}

// OnCollision registers a callback for datasets with key collisions.
func (c *client) OnCollision(fn CollisionHook) {
	c.hooks.OnCollision(fn)
}

// OnMerged registers a callback for completed merges.
func (c *client) OnMerged(fn MergedHook) {
	c.hooks.OnMerged(fn)
}
