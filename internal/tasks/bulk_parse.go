package tasks

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

const (
	defaultBulkWorkers = 3
	maxBulkWorkers     = 10
	defaultBulkRate    = 2.0
)

// BulkParseOpts contains configuration for bulk artist parses.
type BulkParseOpts struct {
	NumWorkers int     // Concurrent workers (default: 3, max: 10)
	RateLimit  float64 // Artists started per second (default: 2)
}

// ArtistParseResult is the outcome of one identifier in a bulk run.
type ArtistParseResult struct {
	ArtistID string
	Result   *ParseResult
	Error    error
}

// BulkParseResult summarises a bulk run. Results are in completion order.
type BulkParseResult struct {
	Total      int
	Successful int
	Failed     int
	Results    []ArtistParseResult
}

// BulkParse parses many artists concurrently with rate limiting and progress tracking.
//
// A failure for one identifier is recorded in its result and does not stop the others. The returned error is only
// non-nil when ctx is canceled before every identifier was dispatched.
func (e *ArtistEngine) BulkParse(
	ctx context.Context,
	ids []string,
	opts BulkParseOpts,
	prog chan<- ProgressUpdate,
) (*BulkParseResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultBulkWorkers
	}
	if opts.NumWorkers > maxBulkWorkers {
		opts.NumWorkers = maxBulkWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultBulkRate
	}

	result := &BulkParseResult{
		Total:   len(ids),
		Results: make([]ArtistParseResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan string, len(ids))
	results := make(chan ArtistParseResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.parseWorker(ctx, &wg, jobs, results)
	}

	var dispatchErr error
	go func() {
		defer close(jobs)
		for _, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				dispatchErr = err
				return
			}
			jobs <- id
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Error == nil {
			result.Successful++
			e.sendProgress(prog, parseCompletedUpdate(completed, len(ids), res))
		} else {
			result.Failed++
			e.sendProgress(prog, parseFailedUpdate(completed, len(ids), res.ArtistID, res.Error))
		}
	}

	return result, dispatchErr
}

// parseWorker is a worker goroutine that parses artists from the jobs channel.
func (e *ArtistEngine) parseWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan string,
	results chan<- ArtistParseResult,
) {
	defer wg.Done()

	for id := range jobs {
		res, err := e.ParseArtist(ctx, id, nil)
		results <- ArtistParseResult{ArtistID: id, Result: res, Error: err}
	}
}
