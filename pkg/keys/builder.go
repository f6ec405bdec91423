package keys

import (
	"context"
	"fmt"
	"maps"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/constants"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/logging"
)

// Builder keys records under a fixed selector configuration.
type Builder struct {
	selectors []Selector
	workers   int
	attachKey bool
}

// Option configures a Builder.
type Option func(*Builder) error

// WithWorkers sets how many records are keyed concurrently.
func WithWorkers(n int) Option {
	return func(b *Builder) error {
		if n < 1 || n > constants.MaxWorkers {
			return errors.NewValidationError("workers", n,
				fmt.Sprintf("must be between 1 and %d", constants.MaxWorkers))
		}
		b.workers = n
		return nil
	}
}

// WithoutMergeKey stops BuildDataset from attaching the key token field.
func WithoutMergeKey() Option {
	return func(b *Builder) error {
		b.attachKey = false
		return nil
	}
}

// NewBuilder validates names and returns a Builder. An empty list means
// constants.DefaultSelectors.
func NewBuilder(names []string, opts ...Option) (*Builder, error) {
	if len(names) == 0 {
		names = constants.DefaultSelectors
	}
	selectors, err := ParseSelectors(names)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		selectors: selectors,
		workers:   constants.DefaultWorkers,
		attachKey: true,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Selectors returns the configured selector names in order.
func (b *Builder) Selectors() []string {
	return Names(b.selectors)
}

// BuildKey computes the key of r, attaching normalized fields to r.
func (b *Builder) BuildKey(r bibliography.Record) bibliography.Key {
	return BuildKey(r, b.selectors)
}

// Stats summarizes one BuildDataset run.
type Stats struct {
	Records       int            `json:"records" yaml:"records"`
	BlankKeys     int            `json:"blank_keys" yaml:"blank_keys"`
	MissingFields map[string]int `json:"missing_fields,omitempty" yaml:"missing_fields,omitempty"`
	Duration      time.Duration  `json:"duration" yaml:"duration"`
}

// BuildDataset returns a keyed copy of ds. Records are keyed concurrently
// and written back in their original positions; ds is not modified.
// Cancelling ctx stops scheduling further records.
func (b *Builder) BuildDataset(ctx context.Context, ds *bibliography.Dataset) (*bibliography.Dataset, Stats, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	out := ds.Clone()
	if out == nil {
		out = bibliography.NewDataset("", nil)
	}
	out.Selectors = b.Selectors()
	out.Keys = make([]bibliography.Key, len(out.Records))

	missing := make([][]string, len(out.Records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range out.Records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := out.Records[i]
			if r == nil {
				r = bibliography.Record{}
				out.Records[i] = r
			}
			missing[i] = b.missingFields(r)
			k := BuildKey(r, b.selectors)
			if b.attachKey {
				r[constants.FieldMergeKey] = k.String()
			}
			out.Keys[i] = k
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, fmt.Errorf("keying dataset %s: %w", out.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("keying dataset %s: %w", out.Name, err)
	}

	stats := Stats{
		Records:       len(out.Records),
		MissingFields: make(map[string]int),
		Duration:      time.Since(start),
	}
	for i, fields := range missing {
		for _, f := range fields {
			stats.MissingFields[f]++
		}
		if out.Keys[i].IsBlank() {
			stats.BlankKeys++
		}
	}

	event := logger.Debug().
		Str("dataset", out.Name).
		Strs("selectors", out.Selectors).
		Int("records", stats.Records).
		Int("blank_keys", stats.BlankKeys).
		Dur("duration", stats.Duration)
	if len(stats.MissingFields) > 0 {
		event = event.Interface("missing_fields", maps.Clone(stats.MissingFields))
	}
	event.Msg("Keyed dataset")

	return out, stats, nil
}

func (b *Builder) missingFields(r bibliography.Record) []string {
	var fields []string
	for _, s := range b.selectors {
		if _, ok := r.Get(s.Source); !ok {
			fields = append(fields, s.Source)
		}
	}
	return fields
}
