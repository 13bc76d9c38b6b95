// Package pipeline runs the towersets computations with caching, logging and
// observability hooks, so the CLI and the HTTP API behave the same way.
//
// # Stages
//
//   - Sequence: tower-set counts for 0..MaxN (cached)
//   - Table: every intermediate table of the computation (not cached, the
//     bounded table is cubic in MaxN)
//   - Verify: the counts cross-checked against partition enumeration (cached)
//   - Simulate: a Monte-Carlo run compared against the exact count
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Sequence(ctx, pipeline.Options{MaxN: 30})
//	if err != nil {
//	    return err
//	}
//	err = pipeline.Encode(os.Stdout, pipeline.FormatText, res)
package pipeline

import (
	"slices"

	"github.com/matzehuels/towersets/pkg/cache"
	"github.com/matzehuels/towersets/pkg/count"
	"github.com/matzehuels/towersets/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxN is the block count computed when none is given.
	DefaultMaxN = 20

	// MaxVerifyN bounds the partition cross-check: the number of partitions
	// grows exponentially and n = 60 already has close to a million.
	MaxVerifyN = 60
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for sequence output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatCSV:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want text, json or csv)", format)
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options configures the sequence, table and verify stages.
type Options struct {
	MaxN       int   `json:"max_n"`
	LevelSizes []int `json:"level_sizes,omitempty"`
	Workers    int   `json:"workers,omitempty"`

	// Refresh skips the cache lookup; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults validates the options and normalises LevelSizes
// (sorted, deduplicated, default {1, 2}).
func (o *Options) ValidateAndSetDefaults() error {
	if err := errors.ValidateMaxN(o.MaxN); err != nil {
		return err
	}
	if o.LevelSizes == nil {
		o.LevelSizes = slices.Clone(count.DefaultLevelSizes)
	}
	sizes, err := errors.ValidateLevelSizes(o.LevelSizes)
	if err != nil {
		return err
	}
	o.LevelSizes = sizes
	if o.Workers < 0 {
		o.Workers = 0
	}
	return nil
}

// KeyOpts returns the cache key inputs for these options.
func (o *Options) KeyOpts() cache.SequenceKeyOpts {
	return cache.SequenceKeyOpts{MaxN: o.MaxN, LevelSizes: o.LevelSizes}
}

func (o *Options) countOptions() count.Options {
	return count.Options{MaxN: o.MaxN, LevelSizes: o.LevelSizes, Workers: o.Workers}
}
