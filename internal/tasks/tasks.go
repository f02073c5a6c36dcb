package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers   = 5
	MaxWorkers       = 10
	DefaultRateLimit = 20.0
)

// Creator adds entities to a catalog. [client.Client] satisfies it.
type Creator interface {
	Create(ctx context.Context, item models.Item) (models.Item, error)
}

// ImportOpts contains configuration for bulk imports.
type ImportOpts struct {
	Workers   int     // Concurrent workers (default: 5, max: 10)
	RateLimit float64 // Creates per second across all workers (default: 20)
}

// ItemResult is the outcome of importing one entity.
type ItemResult struct {
	Index  int         // Position in the input batch
	Input  models.Item // Entity as submitted
	Stored models.Item // Entity as stored, with its assigned id
	Error  error
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []ItemResult // Sorted by Index
}

// Importer creates entities in bulk.
type Importer struct {
	catalog Creator
}

// NewImporter creates an [Importer] writing to catalog.
func NewImporter(catalog Creator) *Importer {
	return &Importer{catalog: catalog}
}

type importJob struct {
	index int
	item  models.Item
}

// Import creates every item through a rate limited worker pool.
//
// Per-item failures are reported in the result. The returned error is non-nil only when the
// importer is unusable or ctx is cancelled, in which case the partial result is still returned.
func (i *Importer) Import(ctx context.Context, progress chan<- ProgressUpdate, items []models.Item, opts ImportOpts) (*ImportResult, error) {
	if i.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Workers > MaxWorkers {
		opts.Workers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}

	result := &ImportResult{
		Total:   len(items),
		Results: make([]ItemResult, 0, len(items)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan importJob, len(items))
	results := make(chan ItemResult, len(items))

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go i.importWorker(ctx, &wg, limiter, jobs, results)
	}

	sendProgress(progress, importStartedUpdate(len(items)))
	for idx, item := range items {
		jobs <- importJob{index: idx, item: item}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Error == nil {
			result.Succeeded++
			sendProgress(progress, importedUpdate(completed, len(items), res.Stored))
		} else {
			result.Failed++
			sendProgress(progress, importFailedUpdate(completed, len(items), res.Input, res.Error))
		}
	}

	sort.Slice(result.Results, func(a, b int) bool {
		return result.Results[a].Index < result.Results[b].Index
	})

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("import interrupted after %d of %d: %w", completed, len(items), err)
	}

	sendProgress(progress, importCompleteUpdate(result))
	return result, nil
}

// importWorker creates entities from the jobs channel until it is drained or ctx is done.
func (i *Importer) importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan importJob,
	results chan<- ItemResult,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		res := ItemResult{Index: job.index, Input: job.item}
		stored, err := i.catalog.Create(ctx, job.item)
		if err != nil {
			res.Error = fmt.Errorf("entry %d: %w", job.index, err)
		} else {
			res.Stored = stored
		}
		results <- res
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}
