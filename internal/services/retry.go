package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/tastemaker/internal/shared"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
)

// doRequestWithRetry sends req up to maxRetries times, backing off exponentially on transport errors,
// 429 and 5xx. A Retry-After header overrides the computed delay.
func (s *SpotifyService) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	baseBackoff := s.baseBackoff
	if baseBackoff <= 0 {
		baseBackoff = defaultBackoff
	}

	ctx := req.Context()
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("request canceled: %w", err)
		}

		resp, err := s.httpClient.Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		attemptNum := attempt + 1
		status := 0
		if resp != nil {
			status = resp.StatusCode
			resp.Body.Close()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("request canceled: %w", ctxErr)
		}
		s.logger.Warn("retrying spotify request", "attempt", attemptNum, "max", s.maxRetries, "status", status, "error", err)

		if attempt == s.maxRetries-1 {
			return nil, exhaustedError(s.maxRetries, status, err)
		}

		backoff := baseBackoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = retryAfter
		}

		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: request failed after %d attempts", shared.ErrAPIRequest, s.maxRetries)
}

func exhaustedError(attempts, status int, err error) error {
	switch {
	case err != nil:
		return fmt.Errorf("%w: request failed after %d attempts: %w", shared.ErrServiceUnavailable, attempts, err)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: still limited after %d attempts", shared.ErrRateLimited, attempts)
	default:
		return fmt.Errorf("%w: status %d after %d attempts", shared.ErrServiceUnavailable, status, attempts)
	}
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}

	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
