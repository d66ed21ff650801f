package warehouse

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/queryir"
)

// maxParallelRenders bounds the goroutines used by RenderAll.
const maxParallelRenders = 8

// Outcome is the result of rendering one query for one dialect. Exactly
// one of Query and Err is set.
type Outcome struct {
	Dialect string
	Query   *dialect.RenderedQuery
	Err     error
}

// RenderAll renders q with every registered bridge concurrently. A failing
// dialect does not stop the others; its error is reported in its Outcome.
// Outcomes are in dialect name order. The returned error is non-nil only
// when ctx is cancelled.
func (r *Registry) RenderAll(ctx context.Context, gctx dialect.GeneratorContext, q queryir.Query) ([]Outcome, error) {
	bridges := r.Bridges()
	out := make([]Outcome, len(bridges))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRenders)
	for i, b := range bridges {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rq, err := b.Generate(gctx, q)
			out[i] = Outcome{Dialect: b.Name(), Query: rq, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
