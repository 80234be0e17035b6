// Spotify API implementation of [CatalogService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/shared"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// maxBatchSize is the most IDs the several-tracks endpoint accepts.
	maxBatchSize = 50
	// playlistPageSize is the largest page the playlist items endpoint returns.
	playlistPageSize = 100
)

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is nil for removed or
// unavailable items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPlaylistPage represents a paginated response of playlist items.
type SpotifyPlaylistPage struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

type severalTracks struct {
	Tracks []*SpotifyTrack `json:"tracks"`
}

// SpotifyOption customizes a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithBaseURL points the service at another API root.
func WithBaseURL(u string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithTokenURL points the client credentials grant at another token endpoint.
func WithTokenURL(u string) SpotifyOption {
	return func(s *SpotifyService) { s.tokenURL = u }
}

// WithLogger sets the logger used for retries, skipped batches and breaker transitions.
func WithLogger(l *log.Logger) SpotifyOption {
	return func(s *SpotifyService) { s.logger = l }
}

// SpotifyService implements [CatalogService] for the Spotify Web API.
type SpotifyService struct {
	baseURL     string
	tokenURL    string
	httpClient  *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[[]byte]
	maxRetries  int
	baseBackoff time.Duration
	batchSize   int
	logger      *log.Logger
}

var _ CatalogService = (*SpotifyService)(nil)

// NewSpotifyService creates a service authenticated with creds and paced by api.
//
// A static access token takes precedence; otherwise the client id and secret are exchanged through the
// client credentials grant.
func NewSpotifyService(ctx context.Context, creds shared.SpotifyConfig, api shared.SpotifyAPIConfig, opts ...SpotifyOption) (*SpotifyService, error) {
	s := &SpotifyService{
		baseURL:     spotifyBaseURL,
		tokenURL:    spotifyTokenURL,
		limiter:     rate.NewLimiter(rate.Limit(api.RateLimit), 1),
		maxRetries:  api.MaxRetries,
		baseBackoff: time.Duration(api.BackoffMS) * time.Millisecond,
		batchSize:   api.BatchSize,
		logger:      shared.NewLogger(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.maxRetries <= 0 {
		s.maxRetries = defaultMaxRetries
	}
	if s.batchSize <= 0 || s.batchSize > maxBatchSize {
		s.batchSize = maxBatchSize
	}
	if api.RateLimit <= 0 {
		s.limiter = rate.NewLimiter(rate.Inf, 1)
	}

	switch {
	case creds.AccessToken != "":
		s.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken}))
	case creds.ClientID != "" && creds.ClientSecret != "":
		cc := &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     s.tokenURL,
		}
		s.httpClient = cc.Client(ctx)
	default:
		return nil, fmt.Errorf("%w: spotify needs an access token or a client id and secret", shared.ErrMissingCredentials)
	}

	s.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "spotify",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// client errors say nothing about the health of the API
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, shared.ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// get fetches endpoint (relative to the API root, or absolute for pagination links) and decodes the body
// into result.
func (s *SpotifyService) get(ctx context.Context, endpoint string, result any) error {
	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		apiURL = s.baseURL + endpoint
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := s.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.doRequestWithRetry(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if err := statusError(resp.StatusCode, apiURL); err != nil {
			return nil, err
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(code int, apiURL string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, apiURL)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrMissingCredentials, code)
	default:
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, code)
	}
}

// PlaylistTracks retrieves every available track of a playlist, following the next links.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	next := fmt.Sprintf("/playlists/%s/tracks?limit=%d", url.PathEscape(playlistID), playlistPageSize)
	var tracks []models.Track
	for page := 1; next != ""; page++ {
		var resp SpotifyPlaylistPage
		if err := s.get(ctx, next, &resp); err != nil {
			return nil, fmt.Errorf("playlist %s page %d: %w", playlistID, page, err)
		}

		for _, item := range resp.Items {
			if item.Track == nil || item.Track.ID == "" {
				continue
			}
			tracks = append(tracks, item.Track.toModel())
		}

		next = ""
		if resp.Next != nil {
			next = *resp.Next
		}
		s.logger.Debug("fetched playlist page", "playlist", playlistID, "page", page, "tracks", len(tracks), "total", resp.Total)
	}

	return tracks, nil
}

// ReleaseYears fetches album release years in batches. A batch that fails after retries is logged and
// skipped; only cancellation of ctx aborts the whole call.
func (s *SpotifyService) ReleaseYears(ctx context.Context, trackIDs []string) (map[string]int, error) {
	years := make(map[string]int, len(trackIDs))

	for start := 0; start < len(trackIDs); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return years, err
		}

		batch := trackIDs[start:min(start+s.batchSize, len(trackIDs))]
		endpoint := "/tracks?ids=" + url.QueryEscape(strings.Join(batch, ","))

		var resp severalTracks
		if err := s.get(ctx, endpoint, &resp); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return years, ctxErr
			}
			s.logger.Warn("skipping release year batch", "offset", start, "size", len(batch), "error", err)
			continue
		}

		for _, t := range resp.Tracks {
			if t == nil {
				continue
			}
			if year, ok := parseYear(t.Album.ReleaseDate); ok {
				years[t.ID] = year
			}
		}
	}

	return years, nil
}

// parseYear reads the year of a release date at any precision (YYYY, YYYY-MM or YYYY-MM-DD).
func parseYear(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

func (t *SpotifyTrack) toModel() models.Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return models.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    strings.Join(names, ";"),
		Album:      t.Album.Name,
		Popularity: float64(t.Popularity),
		DurationMS: float64(t.DurationMS),
	}
}
