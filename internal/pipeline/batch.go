package pipeline

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mwalther/cvgen/internal/config"
	"github.com/mwalther/cvgen/internal/render"
	"github.com/mwalther/cvgen/internal/schema"
)

// RunBatch processes several documents through independent pipeline runs,
// each with its own document, report, and output files. A failing document
// is recorded and the rest continue; only configuration errors (which would
// poison every document) and context cancellation abort the whole batch.
//
// Results are keyed by data path. When some documents failed, the error is
// a *BatchError carrying the per-document failures.
func RunBatch(ctx context.Context, paths []string, opts Options) (map[string]*Result, error) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	var mu sync.Mutex
	results := make(map[string]*Result, len(paths))
	failures := make(map[string]error)

	for _, path := range paths {
		g.Go(func() error {
			runOpts := opts
			runOpts.DataPath = path
			res, err := Run(gCtx, runOpts)

			mu.Lock()
			defer mu.Unlock()
			if res != nil {
				results[path] = res
			}
			if err != nil {
				if IsConfigError(err) {
					return err
				}
				failures[path] = err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if len(failures) > 0 {
		return results, &BatchError{Failures: failures}
	}
	return results, nil
}

// IsConfigError reports whether err belongs to the configuration class:
// a config file problem, or a schema or template source that is missing or
// malformed. These abort before any document is processed and map to their
// own exit code in the CLI.
func IsConfigError(err error) bool {
	var cfgErr *config.Error
	var loadErr *schema.LoadError
	var tmplErr *render.TemplateError
	return errors.As(err, &cfgErr) || errors.As(err, &loadErr) || errors.As(err, &tmplErr)
}
