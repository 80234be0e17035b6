package models

import "slices"

// Catalog column names.
const (
	ColumnID        = "track_id"
	ColumnName      = "track_name"
	ColumnArtists   = "artists"
	ColumnAlbum     = "album_name"
	ColumnGenre     = "track_genre"
	ColumnMainGenre = "main_genre"
	ColumnLiked     = "liked"
)

// NumericColumns is the fixed, ordered set of audio attribute columns every catalog must carry.
var NumericColumns = []string{
	"popularity",
	"duration_ms",
	"danceability",
	"energy",
	"key",
	"loudness",
	"mode",
	"speechiness",
	"acousticness",
	"instrumentalness",
	"liveness",
	"valence",
	"tempo",
	"time_signature",
}

// Track is one catalog row.
type Track struct {
	ID      string
	Name    string
	Artists string
	Album   string

	Popularity       float64
	DurationMS       float64
	Danceability     float64
	Energy           float64
	Key              float64
	Loudness         float64
	Mode             float64
	Speechiness      float64
	Acousticness     float64
	Instrumentalness float64
	Liveness         float64
	Valence          float64
	Tempo            float64
	TimeSignature    float64

	Genre     string // fine-grained tag from the catalog
	MainGenre string // coarse category
	Liked     int    // 1 when the user likes the track
}

// Numeric returns the audio attribute stored under column, reporting false for unknown names.
func (t *Track) Numeric(column string) (float64, bool) {
	switch column {
	case "popularity":
		return t.Popularity, true
	case "duration_ms":
		return t.DurationMS, true
	case "danceability":
		return t.Danceability, true
	case "energy":
		return t.Energy, true
	case "key":
		return t.Key, true
	case "loudness":
		return t.Loudness, true
	case "mode":
		return t.Mode, true
	case "speechiness":
		return t.Speechiness, true
	case "acousticness":
		return t.Acousticness, true
	case "instrumentalness":
		return t.Instrumentalness, true
	case "liveness":
		return t.Liveness, true
	case "valence":
		return t.Valence, true
	case "tempo":
		return t.Tempo, true
	case "time_signature":
		return t.TimeSignature, true
	default:
		return 0, false
	}
}

// SetNumeric stores v under column, reporting false for unknown names.
func (t *Track) SetNumeric(column string, v float64) bool {
	switch column {
	case "popularity":
		t.Popularity = v
	case "duration_ms":
		t.DurationMS = v
	case "danceability":
		t.Danceability = v
	case "energy":
		t.Energy = v
	case "key":
		t.Key = v
	case "loudness":
		t.Loudness = v
	case "mode":
		t.Mode = v
	case "speechiness":
		t.Speechiness = v
	case "acousticness":
		t.Acousticness = v
	case "instrumentalness":
		t.Instrumentalness = v
	case "liveness":
		t.Liveness = v
	case "valence":
		t.Valence = v
	case "tempo":
		t.Tempo = v
	case "time_signature":
		t.TimeSignature = v
	default:
		return false
	}
	return true
}

// IsLiked reports whether the track carries the positive label.
func (t *Track) IsLiked() bool { return t.Liked == 1 }

// LikedSet holds the identifiers of tracks the user likes.
type LikedSet struct {
	ids map[string]struct{}
}

// NewLikedSet builds a set from ids, skipping empty strings.
func NewLikedSet(ids ...string) LikedSet {
	s := LikedSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is liked.
func (s LikedSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of distinct identifiers.
func (s LikedSet) Len() int { return len(s.ids) }

// IDs returns the identifiers in sorted order.
func (s LikedSet) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Recommendation is an unseen track with the model's probability that the user likes it.
type Recommendation struct {
	Track       Track
	Probability float64
}
