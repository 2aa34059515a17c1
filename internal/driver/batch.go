package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"netxlate/internal/trace"
	"netxlate/internal/ui"
)

// TranslateAll translates every path concurrently. Results come back in
// the order of paths; a fatal error of one file does not stop the others
// and is kept in the file's result Bag. The returned error is only set when
// ctx is cancelled.
func TranslateAll(ctx context.Context, paths []string, opts Options) ([]*Result, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "translate_all", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	if len(paths) == 1 {
		res, _ := Translate(ctx, paths[0], opts)
		return []*Result{res}, ctx.Err()
	}
	// one output name cannot serve several top-level files
	opts.OutputPath = ""

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	sink := opts.sink()
	for _, p := range paths {
		sink.OnEvent(ui.Event{File: p, Stage: ui.StageRead, Status: ui.StatusQueued})
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, _ := Translate(gctx, p, opts)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
