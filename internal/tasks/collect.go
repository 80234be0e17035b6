package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/services"
	"github.com/desertthunder/tastemaker/internal/shared"
)

const (
	defaultCollectWorkers = 3
	maxCollectWorkers     = 8
)

// CollectOpts contains configuration for liked-track collection.
type CollectOpts struct {
	NumWorkers int // Concurrent playlist fetchers (default: 3, max: 8)
}

// PlaylistResult is the outcome of fetching one playlist.
type PlaylistResult struct {
	PlaylistID string
	Tracks     int
	Error      error
}

// CollectResult summarizes a multi-playlist collection.
type CollectResult struct {
	Tracks     []models.Track // deduplicated by id, in playlist then track order
	Playlists  []PlaylistResult
	Successful int
	Failed     int
}

type collectJob struct {
	index int
	id    string
}

type collectOutcome struct {
	job    collectJob
	tracks []models.Track
	err    error
}

// CollectLiked fetches several playlists concurrently and merges their tracks into one liked list.
//
// Workers share the service, so request pacing is whatever the service's limiter allows. Failed
// playlists are reported in the result; the call only errors when every playlist failed.
func (e *PipelineEngine) CollectLiked(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	srv services.CatalogService,
	ids []string,
	opts CollectOpts,
) (*CollectResult, error) {
	if srv == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no playlist ids", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultCollectWorkers
	}
	if opts.NumWorkers > maxCollectWorkers {
		opts.NumWorkers = maxCollectWorkers
	}

	jobs := make(chan collectJob, len(ids))
	outcomes := make(chan collectOutcome, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.collectWorker(ctx, &wg, srv, jobs, outcomes)
	}

	for i, id := range ids {
		jobs <- collectJob{index: i, id: id}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	ordered := make([]collectOutcome, len(ids))
	completed := 0
	for out := range outcomes {
		completed++
		ordered[out.job.index] = out
		if out.err != nil {
			e.logger.Warn("playlist fetch failed", "playlist", out.job.id, "error", out.err)
			e.sendProgress(prog, playlistFailedUpdate(completed, len(ids), out.job.id, out.err))
		} else {
			e.sendProgress(prog, playlistFetchedUpdate(completed, len(ids), out.job.id, len(out.tracks)))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &CollectResult{Playlists: make([]PlaylistResult, len(ids))}
	seen := make(map[string]struct{})
	for i, out := range ordered {
		result.Playlists[i] = PlaylistResult{PlaylistID: ids[i], Tracks: len(out.tracks), Error: out.err}
		if out.err != nil {
			result.Failed++
			continue
		}
		result.Successful++
		for _, t := range out.tracks {
			if t.ID == "" {
				continue
			}
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			result.Tracks = append(result.Tracks, t)
		}
	}

	e.logger.Info("collected liked tracks", "playlists", len(ids), "failed", result.Failed, "tracks", len(result.Tracks))
	if result.Successful == 0 {
		return result, fmt.Errorf("all %d playlists failed: %w", len(ids), ordered[0].err)
	}
	return result, nil
}

// collectWorker fetches playlists from the jobs channel until it closes or ctx is done.
func (e *PipelineEngine) collectWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	srv services.CatalogService,
	jobs <-chan collectJob,
	outcomes chan<- collectOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			outcomes <- collectOutcome{job: job, err: ctx.Err()}
			continue
		default:
		}

		e.logger.Debug("fetching playlist", "playlist", job.id, "service", srv.Name())
		tracks, err := srv.PlaylistTracks(ctx, job.id)
		outcomes <- collectOutcome{job: job, tracks: tracks, err: err}
	}
}

// FetchYears resolves release years for ids. Batches the service could not fetch are simply absent.
func (e *PipelineEngine) FetchYears(ctx context.Context, prog chan<- ProgressUpdate, srv services.CatalogService, ids []string) (map[string]int, error) {
	if srv == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	years, err := srv.ReleaseYears(ctx, ids)
	if err != nil {
		return nil, err
	}
	e.logger.Info("fetched release years", "requested", len(ids), "found", len(years))
	e.sendProgress(prog, yearsUpdate(len(years), len(ids)))
	return years, nil
}
