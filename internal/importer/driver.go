package importer

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/tvingest/internal/encode"
)

// Run imports every file concurrently and collects per-file results in
// input order. A failing file never cancels its siblings; admission to
// external tools is controlled entirely by the taskmaster throttles.
// The returned error summarizes failures, with detail in each Result.
func (i *Importer) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	var g errgroup.Group
	for idx, path := range paths {
		g.Go(func() error {
			results[idx] = i.ImportFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d imports failed", failed, len(paths))
	}
	return results, nil
}

// Jobs extracts the encode jobs of the successful results, ordered by
// season and episode, for batch-script emission in title-only runs.
func Jobs(results []Result) []encode.Job {
	ok := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			ok = append(ok, r)
		}
	}
	sort.Slice(ok, func(a, b int) bool {
		ea, eb := ok[a].Episode, ok[b].Episode
		if ea.Season != eb.Season {
			return ea.Season < eb.Season
		}
		return ea.Episode < eb.Episode
	})
	jobs := make([]encode.Job, 0, len(ok))
	for _, r := range ok {
		jobs = append(jobs, r.Job)
	}
	return jobs
}
