package dataset

import (
	"github.com/desertthunder/tastemaker/internal/genre"
	"github.com/desertthunder/tastemaker/internal/models"
)

// MergeStats summarizes a [Merge].
type MergeStats struct {
	Input          int // catalog rows read
	Output         int // rows after deduplication
	Duplicates     int // rows dropped as repeated (name, artists) pairs
	Liked          int // output rows labeled liked
	UnmatchedLiked int // liked identifiers with no catalog row
}

// Merge labels every catalog row, assigns its coarse genre and deduplicates by exact (name, artists).
//
// Labels are assigned before deduplication, so a liked identifier whose row is collapsed into an earlier
// duplicate does not carry its label over.
func Merge(catalog []models.Track, liked models.LikedSet, norm *genre.Normalizer) ([]models.Track, MergeStats) {
	type pair struct{ name, artists string }

	stats := MergeStats{Input: len(catalog)}
	seen := make(map[pair]struct{}, len(catalog))
	matched := make(map[string]struct{})
	out := make([]models.Track, 0, len(catalog))

	for _, t := range catalog {
		if liked.Has(t.ID) {
			matched[t.ID] = struct{}{}
		}

		key := pair{t.Name, t.Artists}
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		t.Liked = 0
		if liked.Has(t.ID) {
			t.Liked = 1
			stats.Liked++
		}
		t.MainGenre = norm.Lookup(t.Genre)
		out = append(out, t)
	}

	stats.Output = len(out)
	stats.UnmatchedLiked = liked.Len() - len(matched)
	return out, stats
}
