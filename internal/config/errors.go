package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoURL is returned when no target URL or list file is specified.
	// This error occurs when neither --list nor a positional argument
	// provides a URL.
	ErrNoURL = errors.New("no url specified: provide a url or use --list")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the retry budget is negative.
	// Zero retries is valid and means a single attempt per request.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// A worker count of zero would mean no scraping at all.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrNoFormat is returned when no export format is selected.
	ErrNoFormat = errors.New("no export format specified")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidRateLimit is returned when the requests-per-second limit
	// is negative. Zero disables rate limiting.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")
)
