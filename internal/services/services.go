package services

import (
	"context"

	"github.com/desertthunder/tastemaker/internal/models"
)

// CatalogService collects liked tracks and track metadata from a streaming provider.
type CatalogService interface {
	// PlaylistTracks returns every track of the playlist, following pagination to the end.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// ReleaseYears maps track IDs to the release year of their album. IDs whose batch failed or whose
	// album has no release date are absent from the result.
	ReleaseYears(ctx context.Context, trackIDs []string) (map[string]int, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}
