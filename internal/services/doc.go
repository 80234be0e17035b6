// Package services talks to the Spotify Web API to collect the inputs of a pipeline run.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates with either a static access token or the OAuth2 client credentials
// grant ([clientcredentials.Config]); the oauth2 transport refreshes client-credential tokens on expiry.
//
// Every request passes through three layers, outermost first:
//   - a [rate.Limiter] pacing requests to the configured rate
//   - a circuit breaker that stops calling the API after repeated server failures
//   - retry with exponential backoff on 429 and 5xx, honoring Retry-After
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrMissingCredentials] : neither token nor client id/secret configured
//   - [shared.ErrNotFound] : playlist or track ID not found
//   - [shared.ErrRateLimited] : still rate limited after all retries
//   - [shared.ErrServiceUnavailable] : server errors after all retries, or circuit open
//   - [shared.ErrAPIRequest] : any other non-2xx response
//
// [SpotifyService.ReleaseYears] never fails on a single batch: failed batches are logged and skipped.
package services
