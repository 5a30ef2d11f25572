package bankimport

import "errors"

// Error kinds. Every terminal error of a run wraps one of these so that
// callers (and tests) can classify failures with errors.Is.
var (
	// ErrConfig marks a missing or malformed configuration value. The user
	// must fix the environment, flags or accounts file.
	ErrConfig = errors.New("invalid configuration")

	// ErrNotFound marks a missing expected input file or directory. The user
	// must supply data.
	ErrNotFound = errors.New("not found")

	// ErrNoData marks a run where nothing usable survived: an upstream API
	// failure, an unsupported quote source, or no rows after filtering.
	ErrNoData = errors.New("no usable data")

	// ErrNoRate marks an unresolvable per-row exchange rate on a strict
	// conversion path. It aborts the whole run.
	ErrNoRate = errors.New("missing exchange rate")
)
