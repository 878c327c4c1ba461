package analytics

import "errors"

// ErrStoreUnavailable marks data-store failures (connection loss, missing
// schema). Callers translate it into a service-unavailable response; it is
// never used for empty result sets, which are valid zero-valued results.
var ErrStoreUnavailable = errors.New("analytics store unavailable")
