package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Input and dataset errors
	ErrMissingInput       = fmt.Errorf("missing input")
	ErrSchemaMismatch     = fmt.Errorf("schema mismatch")
	ErrNoLikedTracks      = fmt.Errorf("no liked tracks in catalog")
	ErrSamplingInfeasible = fmt.Errorf("sampling infeasible")

	// Feature pipeline and model errors
	ErrColumnMismatch = fmt.Errorf("column layout mismatch")
	ErrNotFitted      = fmt.Errorf("not fitted")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
