package bibmerge

import (
	"fmt"
	"slices"

	"github.com/agentstation/bibmerge/pkg/constants"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/reconcile"
)

// Option is a function that configures a Client.
type Option func(*options) error

type options struct {
	selectors []string
	workers   int
	direction reconcile.Direction
	union     bool
	keepKey   bool
	strict    bool
}

func defaults() *options {
	return &options{
		selectors: slices.Clone(constants.DefaultSelectors),
		workers:   constants.DefaultWorkers,
		direction: reconcile.LeftToRight,
		union:     true,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithSelectors sets the ordered key selectors, e.g.
// "normauthor", "year", "normtitle". Selectors are validated by New.
func WithSelectors(selectors ...string) Option {
	return func(o *options) error {
		if len(selectors) > 0 {
			o.selectors = slices.Clone(selectors)
		}
		return nil
	}
}

// WithWorkers sets how many records are keyed concurrently.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxWorkers {
			return errors.NewValidationError("workers", n,
				fmt.Sprintf("must be between 1 and %d", constants.MaxWorkers))
		}
		o.workers = n
		return nil
	}
}

// WithDirection chooses which dataset of a merge plays the left role.
func WithDirection(d reconcile.Direction) Option {
	return func(o *options) error {
		o.direction = d
		return nil
	}
}

// WithUnion controls whether unmatched right records are kept in the
// merged output. It defaults to true.
func WithUnion(enabled bool) Option {
	return func(o *options) error {
		o.union = enabled
		return nil
	}
}

// WithKeepKey keeps the merge key and normalized fields in merged output.
func WithKeepKey(enabled bool) Option {
	return func(o *options) error {
		o.keepKey = enabled
		return nil
	}
}

// WithStrict turns key collisions into errors.
func WithStrict(enabled bool) Option {
	return func(o *options) error {
		o.strict = enabled
		return nil
	}
}
