package dataset

import (
	"fmt"
	"math/rand"

	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/shared"
)

// BalanceOptions configures [Balance].
type BalanceOptions struct {
	AmplificationFactor float64 // k in the artist like ratio; larger values promote less
	UndersampleRatio    int     // unliked rows kept per liked row
	Seed                int64
}

// DefaultBalanceOptions returns k=2, a 1:2 ratio and seed 42.
func DefaultBalanceOptions() BalanceOptions {
	return BalanceOptions{AmplificationFactor: 2, UndersampleRatio: 2, Seed: 42}
}

// BalanceStats summarizes a [Balance].
type BalanceStats struct {
	OriginalLiked int // liked rows before promotion
	Synthetic     int // unliked rows promoted by the artist draw
	Liked         int // liked rows in the output
	Negatives     int // unliked rows available after promotion
	Sampled       int // unliked rows in the output
}

// ArtistLikeRatios returns, per artist with at least one liked track, (1/k)·(liked/total − 1) + 1 clamped to [0, 1].
//
// Artists without liked tracks are absent from the map and have probability zero.
func ArtistLikeRatios(tracks []models.Track, k float64) map[string]float64 {
	total := make(map[string]int)
	liked := make(map[string]int)
	for i := range tracks {
		total[tracks[i].Artists]++
		if tracks[i].IsLiked() {
			liked[tracks[i].Artists]++
		}
	}

	ratios := make(map[string]float64, len(liked))
	for artist, n := range liked {
		r := (1/k)*(float64(n)/float64(total[artist])-1) + 1
		ratios[artist] = min(max(r, 0), 1)
	}
	return ratios
}

// Balance promotes unliked tracks by artist affinity, then undersamples the unliked rows to
// liked × UndersampleRatio and shuffles. The input slice is not modified.
//
// Every random step draws from its own generator seeded with opts.Seed, so identical input and options
// produce an identical table.
func Balance(tracks []models.Track, opts BalanceOptions) ([]models.Track, BalanceStats, error) {
	var stats BalanceStats

	if opts.AmplificationFactor <= 0 {
		return nil, stats, fmt.Errorf("%w: amplification factor must be positive, got %v", shared.ErrInvalidArgument, opts.AmplificationFactor)
	}
	if opts.UndersampleRatio < 1 {
		return nil, stats, fmt.Errorf("%w: undersample ratio must be at least 1, got %d", shared.ErrInvalidArgument, opts.UndersampleRatio)
	}

	table := make([]models.Track, len(tracks))
	copy(table, tracks)

	ratios := ArtistLikeRatios(table, opts.AmplificationFactor)

	draw := rand.New(rand.NewSource(opts.Seed))
	for i := range table {
		if table[i].IsLiked() {
			stats.OriginalLiked++
			continue
		}
		// one draw per unliked track, p = 0 included
		if draw.Float64() < ratios[table[i].Artists] {
			table[i].Liked = 1
			stats.Synthetic++
		}
	}

	var liked, unliked []models.Track
	for _, t := range table {
		if t.IsLiked() {
			liked = append(liked, t)
		} else {
			unliked = append(unliked, t)
		}
	}

	stats.Liked = len(liked)
	stats.Negatives = len(unliked)
	if stats.Liked == 0 {
		return nil, stats, fmt.Errorf("%w: cannot balance a table without liked rows", shared.ErrNoLikedTracks)
	}

	n := stats.Liked * opts.UndersampleRatio
	if n > len(unliked) {
		return nil, stats, fmt.Errorf("%w: need %d unliked rows (%d liked × %d) but only %d are available",
			shared.ErrSamplingInfeasible, n, stats.Liked, opts.UndersampleRatio, len(unliked))
	}

	sample := rand.New(rand.NewSource(opts.Seed))
	balanced := make([]models.Track, 0, stats.Liked+n)
	balanced = append(balanced, liked...)
	for _, i := range sample.Perm(len(unliked))[:n] {
		balanced = append(balanced, unliked[i])
	}
	stats.Sampled = n

	shuffle := rand.New(rand.NewSource(opts.Seed))
	shuffle.Shuffle(len(balanced), func(i, j int) {
		balanced[i], balanced[j] = balanced[j], balanced[i]
	})

	return balanced, stats, nil
}
