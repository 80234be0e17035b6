package testing

import (
	"fmt"
	"math/rand"

	"github.com/desertthunder/tastemaker/internal/models"
)

var fineGenres = []string{"pop", "rock", "edm", "house", "jazz", "k-pop", "folk", "hip-hop", "classical", "salsa", "comedy", "vaporwave"}

// SyntheticCatalog builds n tracks spread over n/5 artists. Each artist has a house style that its
// tracks scatter around, so artist membership carries signal about the audio attributes.
//
// Artists with an even index lean energetic and danceable; odd ones lean acoustic and calm.
func SyntheticCatalog(n int, seed int64) []models.Track {
	rng := rand.New(rand.NewSource(seed))
	numArtists := max(n/5, 1)

	tracks := make([]models.Track, n)
	for i := range tracks {
		a := i % numArtists
		energetic := a%2 == 0
		base := 0.25
		if energetic {
			base = 0.75
		}
		jitter := func(center, spread float64) float64 {
			v := center + (rng.Float64()-0.5)*spread
			return min(max(v, 0), 1)
		}

		tracks[i] = models.Track{
			ID:               fmt.Sprintf("track-%04d", i),
			Name:             fmt.Sprintf("Song %d", i),
			Artists:          fmt.Sprintf("Artist %03d", a),
			Album:            fmt.Sprintf("Album %d", a),
			Popularity:       float64(rng.Intn(100)),
			DurationMS:       float64(150000 + rng.Intn(120000)),
			Danceability:     jitter(base, 0.3),
			Energy:           jitter(base, 0.3),
			Key:              float64(rng.Intn(12)),
			Loudness:         -20 + 15*jitter(base, 0.3),
			Mode:             float64(rng.Intn(2)),
			Speechiness:      jitter(0.1, 0.1),
			Acousticness:     jitter(1-base, 0.3),
			Instrumentalness: jitter(0.2, 0.3),
			Liveness:         jitter(0.2, 0.2),
			Valence:          jitter(base, 0.4),
			Tempo:            80 + 80*jitter(base, 0.3),
			TimeSignature:    4,
			Genre:            fineGenres[a%len(fineGenres)],
		}
	}
	return tracks
}

// LikedIDs picks count identifiers from tracks by energetic artists, one per artist while artists last.
func LikedIDs(tracks []models.Track, count int) []string {
	var ids []string
	used := make(map[string]bool)
	for pass := 0; pass < 2 && len(ids) < count; pass++ {
		for _, t := range tracks {
			if len(ids) == count {
				break
			}
			if t.Energy < 0.5 || (pass == 0 && used[t.Artists]) || contains(ids, t.ID) {
				continue
			}
			used[t.Artists] = true
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
