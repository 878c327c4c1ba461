package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/resto-bi/backend/internal/domain/analytics"
)

// CacheKey identifies one memoized aggregation result: an operation name
// plus every parameter that shaped it. Two calls produce the same key string
// exactly when they would produce the same result set, so parts are appended
// in a fixed order and nil parameters are skipped entirely.
type CacheKey struct {
	op    string
	parts []string
}

// NewCacheKey starts a key for the given operation
func NewCacheKey(op string) CacheKey {
	return CacheKey{op: op}
}

// WithFilter appends every set field of the filter in canonical order
func (k CacheKey) WithFilter(f analytics.SaleFilter) CacheKey {
	if f.StartDate != nil {
		k = k.with("start", f.StartDate.Format(time.RFC3339))
	}
	if f.EndDate != nil {
		k = k.with("end", f.EndDate.Format(time.RFC3339))
	}
	if f.StoreID != nil {
		k = k.with("store", strconv.FormatInt(*f.StoreID, 10))
	}
	if f.ChannelID != nil {
		k = k.with("channel", strconv.FormatInt(*f.ChannelID, 10))
	}
	if f.DayOfWeek != nil {
		k = k.with("dow", strconv.Itoa(*f.DayOfWeek))
	}
	if f.HourStart != nil {
		k = k.with("hour_start", strconv.Itoa(*f.HourStart))
	}
	if f.HourEnd != nil {
		k = k.with("hour_end", strconv.Itoa(*f.HourEnd))
	}
	return k
}

// WithString appends a named string parameter
func (k CacheKey) WithString(name, value string) CacheKey {
	return k.with(name, value)
}

// WithInt appends a named integer parameter
func (k CacheKey) WithInt(name string, value int) CacheKey {
	return k.with(name, strconv.Itoa(value))
}

// WithFloat appends a named float parameter
func (k CacheKey) WithFloat(name string, value float64) CacheKey {
	return k.with(name, strconv.FormatFloat(value, 'g', -1, 64))
}

func (k CacheKey) with(name, value string) CacheKey {
	k.parts = append(k.parts, fmt.Sprintf("%s=%s", name, value))
	return k
}

// String renders the key. Whitespace and path separators are replaced so the
// key stays a single safe token in logs and store tooling.
func (k CacheKey) String() string {
	key := k.op
	if len(k.parts) > 0 {
		key += "_" + strings.Join(k.parts, "_")
	}
	return sanitizeKey(key)
}

func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '/':
			return '_'
		}
		return r
	}, key)
}
