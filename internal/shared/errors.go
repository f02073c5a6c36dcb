package shared

import "fmt"

var (
	// Store errors
	ErrNotFound        = fmt.Errorf("entity not found")
	ErrAlreadyAssigned = fmt.Errorf("identifier already assigned")
	ErrMalformedInput  = fmt.Errorf("malformed input")

	// Configuration errors
	ErrMissingConfig   = fmt.Errorf("configuration not found")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrUnknownBackend  = fmt.Errorf("unknown activity backend")
	ErrUnsupportedSeed = fmt.Errorf("unsupported seed file format")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
