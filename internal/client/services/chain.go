package services

import (
	"context"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/logging"
)

// strategy is one step of an LMS fallback chain.
type strategy[T any] struct {
	name string
	run  func(ctx context.Context, site models.Site) ([]T, error)
}

// endpointStrategy fetches a list from a REST endpoint.
func endpointStrategy[T any](api API, endpoint string) strategy[T] {
	return strategy[T]{
		name: endpoint,
		run: func(ctx context.Context, site models.Site) ([]T, error) {
			var out []T
			if err := api.Get(ctx, site, endpoint, &out); err != nil {
				return nil, err
			}
			if out == nil {
				out = []T{}
			}
			return out, nil
		},
	}
}

// synthStrategy never fails.
func synthStrategy[T any](name string, fn func(ctx context.Context, site models.Site) []T) strategy[T] {
	return strategy[T]{
		name: name,
		run: func(ctx context.Context, site models.Site) ([]T, error) {
			return fn(ctx, site), nil
		},
	}
}

// runChain tries each strategy in order and returns the first result that
// did not fail, with the name of the strategy that produced it. ok is false
// only when every strategy failed.
func runChain[T any](ctx context.Context, log logging.Logger, site models.Site, chain []strategy[T]) (result []T, source string, ok bool) {
	for _, st := range chain {
		out, err := st.run(ctx, site)
		if err == nil {
			return out, st.name, true
		}
		log.Debug(ctx, "strategy unavailable, falling back", "strategy", st.name, "site", site.Name, "error", err)
	}
	return []T{}, "", false
}
