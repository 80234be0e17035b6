package dataset

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/shared"
	tu "github.com/desertthunder/tastemaker/internal/testing"
)

func labeledCatalog(n, liked int, seed int64) []models.Track {
	tracks := tu.SyntheticCatalog(n, seed)
	ids := models.NewLikedSet(tu.LikedIDs(tracks, liked)...)
	for i := range tracks {
		if ids.Has(tracks[i].ID) {
			tracks[i].Liked = 1
		}
	}
	return tracks
}

func TestArtistLikeRatios(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Artists: "A", Liked: 1},
		{ID: "2", Artists: "A"},
		{ID: "3", Artists: "A"},
		{ID: "4", Artists: "A"},
		{ID: "5", Artists: "B", Liked: 1},
		{ID: "6", Artists: "C"},
	}

	tests := []struct {
		name   string
		k      float64
		artist string
		want   float64
		found  bool
	}{
		{"quarter liked with k=2", 2, "A", 0.625, true},
		{"fully liked artist", 2, "B", 1, true},
		{"never liked artist", 2, "C", 0, false},
		{"small k clamps at zero", 0.5, "A", 0, true},
		{"k=1 yields raw ratio", 1, "A", 0.25, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ArtistLikeRatios(tracks, tt.k)[tt.artist]
			if ok != tt.found {
				t.Fatalf("expected presence %v, got %v", tt.found, ok)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBalance(t *testing.T) {
	tracks := labeledCatalog(1000, 30, 7)
	opts := DefaultBalanceOptions()

	balanced, stats, err := Balance(tracks, opts)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}

	var liked, unliked int
	for _, tr := range balanced {
		if tr.IsLiked() {
			liked++
		} else {
			unliked++
		}
	}

	if unliked != liked*opts.UndersampleRatio {
		t.Errorf("expected %d unliked rows, got %d", liked*opts.UndersampleRatio, unliked)
	}
	if liked < 30 {
		t.Errorf("originally liked rows must survive, got %d liked", liked)
	}
	if stats.OriginalLiked != 30 || stats.Liked != liked || stats.Sampled != unliked {
		t.Errorf("stats disagree with output: %+v", stats)
	}
	if stats.Liked != stats.OriginalLiked+stats.Synthetic {
		t.Errorf("liked count should equal original plus synthetic: %+v", stats)
	}

	t.Run("never demotes liked rows", func(t *testing.T) {
		byID := make(map[string]models.Track, len(balanced))
		for _, tr := range balanced {
			byID[tr.ID] = tr
		}
		for _, tr := range tracks {
			if !tr.IsLiked() {
				continue
			}
			got, ok := byID[tr.ID]
			if !ok {
				t.Errorf("liked track %s dropped", tr.ID)
			} else if !got.IsLiked() {
				t.Errorf("liked track %s demoted", tr.ID)
			}
		}
	})

	t.Run("deterministic for a seed", func(t *testing.T) {
		again, _, err := Balance(tracks, opts)
		if err != nil {
			t.Fatalf("Balance() error = %v", err)
		}
		if !reflect.DeepEqual(balanced, again) {
			t.Error("expected identical output for identical input and seed")
		}
	})

	t.Run("input untouched", func(t *testing.T) {
		fresh := labeledCatalog(1000, 30, 7)
		if !reflect.DeepEqual(tracks, fresh) {
			t.Error("Balance modified its input")
		}
	})
}

func TestBalance_Errors(t *testing.T) {
	tests := []struct {
		name    string
		tracks  []models.Track
		opts    BalanceOptions
		wantErr error
	}{
		{
			name:    "no liked rows",
			tracks:  labeledCatalog(50, 0, 1),
			opts:    DefaultBalanceOptions(),
			wantErr: shared.ErrNoLikedTracks,
		},
		{
			name: "too few unliked rows",
			tracks: []models.Track{
				{ID: "1", Artists: "A", Liked: 1},
				{ID: "2", Artists: "B", Liked: 1},
				{ID: "3", Artists: "C"},
			},
			opts:    DefaultBalanceOptions(),
			wantErr: shared.ErrSamplingInfeasible,
		},
		{
			name:    "non-positive amplification",
			tracks:  labeledCatalog(50, 5, 1),
			opts:    BalanceOptions{AmplificationFactor: 0, UndersampleRatio: 2},
			wantErr: shared.ErrInvalidArgument,
		},
		{
			name:    "zero ratio",
			tracks:  labeledCatalog(50, 5, 1),
			opts:    BalanceOptions{AmplificationFactor: 2, UndersampleRatio: 0},
			wantErr: shared.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Balance(tt.tracks, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
