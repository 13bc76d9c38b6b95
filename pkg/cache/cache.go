// Package cache stores computed tower-set sequences so repeated requests for
// the same block range and level sizes skip the computation.
//
// Backends share the [Cache] interface:
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: shared cache for several CLI or API processes
//   - [MongoCache]: persistent store with TTL expiry
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer] from the inputs that determine a result, so
// results for different level sizes never collide.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values. Results are deterministic, so entries only
// expire to bound storage.
const (
	TTLSequence = 30 * 24 * time.Hour
	TTLVerify   = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SequenceKeyOpts are the inputs that determine a sequence result.
type SequenceKeyOpts struct {
	MaxN       int   `json:"max_n"`
	LevelSizes []int `json:"level_sizes"`
}

// Keyer builds cache keys.
type Keyer interface {
	// SequenceKey identifies a computed sequence.
	SequenceKey(opts SequenceKeyOpts) string

	// VerifyKey identifies a cross-check result.
	VerifyKey(opts SequenceKeyOpts) string
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SequenceKey returns "sequence:<sha256>" over opts.
func (DefaultKeyer) SequenceKey(opts SequenceKeyOpts) string {
	return hashKey("sequence", opts.MaxN, opts.LevelSizes)
}

// VerifyKey returns "verify:<sha256>" over opts.
func (DefaultKeyer) VerifyKey(opts SequenceKeyOpts) string {
	return hashKey("verify", opts.MaxN, opts.LevelSizes)
}
