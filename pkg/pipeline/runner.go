package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math/big"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/towersets/pkg/cache"
	"github.com/matzehuels/towersets/pkg/count"
	"github.com/matzehuels/towersets/pkg/errors"
	"github.com/matzehuels/towersets/pkg/observability"
	"github.com/matzehuels/towersets/pkg/partition"
	"github.com/matzehuels/towersets/pkg/simulate"
)

// Stage names reported to observability hooks and used as cache key types.
const (
	StageSequence = "sequence"
	StageTable    = "table"
	StageVerify   = "verify"
)

// Runner executes stages against a cache.
//
// The Runner keeps no results of its own; it is safe for concurrent use as
// long as the cache is. Concurrent Sequence or Verify calls for the same
// inputs share one computation, and callers of a shared computation receive
// the same values, which they must not modify.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache TTLs when positive.
	TTL time.Duration

	// flight merges concurrent computations of the same cache key.
	flight singleflight.Group
}

// NewRunner creates a runner. A nil keyer means DefaultKeyer, a nil cache
// disables caching and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// SequenceResult is the output of the sequence stage.
type SequenceResult struct {
	MaxN       int           `json:"max_n"`
	LevelSizes []int         `json:"level_sizes"`
	Values     []*big.Int    `json:"values"`
	Duration   time.Duration `json:"duration"`
	CacheHit   bool          `json:"cache_hit"`
}

// Sequence returns the tower-set counts for 0..opts.MaxN.
func (r *Runner) Sequence(ctx context.Context, opts Options) (*SequenceResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	key := r.Keyer.SequenceKey(opts.KeyOpts())
	start := time.Now()

	var values []*big.Int
	if r.lookup(ctx, StageSequence, key, opts.Refresh, &values) && len(values) == opts.MaxN+1 {
		r.Logger.Debug("sequence cache hit", "max_n", opts.MaxN, "sizes", opts.LevelSizes)
		return &SequenceResult{
			MaxN:       opts.MaxN,
			LevelSizes: opts.LevelSizes,
			Values:     values,
			Duration:   time.Since(start),
			CacheHit:   true,
		}, nil
	}

	v, err := r.share(ctx, key, func(ctx context.Context) (any, error) {
		observability.Compute().OnComputeStart(ctx, StageSequence, opts.MaxN)
		tables, err := count.Build(ctx, opts.countOptions())
		observability.Compute().OnComputeComplete(ctx, StageSequence, opts.MaxN, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		values := tables.Sequence()
		r.store(ctx, StageSequence, key, values, cache.TTLSequence)
		r.Logger.Info("computed sequence",
			"max_n", opts.MaxN,
			"sizes", opts.LevelSizes,
			"duration", time.Since(start).Round(time.Millisecond))
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	values = v.([]*big.Int)
	duration := time.Since(start)

	return &SequenceResult{
		MaxN:       opts.MaxN,
		LevelSizes: opts.LevelSizes,
		Values:     values,
		Duration:   duration,
	}, nil
}

// Table builds every intermediate table. Tables are never cached.
func (r *Runner) Table(ctx context.Context, opts Options) (*count.Tables, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	observability.Compute().OnComputeStart(ctx, StageTable, opts.MaxN)
	tables, err := count.Build(ctx, opts.countOptions())
	observability.Compute().OnComputeComplete(ctx, StageTable, opts.MaxN, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("built tables", "max_n", opts.MaxN, "duration", time.Since(start).Round(time.Millisecond))
	return tables, nil
}

// VerifyResult is the output of the verify stage.
type VerifyResult struct {
	MaxN       int                  `json:"max_n"`
	LevelSizes []int                `json:"level_sizes"`
	Values     []*big.Int           `json:"values"`
	Mismatches []partition.Mismatch `json:"mismatches,omitempty"`
	Duration   time.Duration        `json:"duration"`
	CacheHit   bool                 `json:"cache_hit"`
}

// OK reports whether both methods agreed everywhere.
func (v *VerifyResult) OK() bool { return len(v.Mismatches) == 0 }

// Verify compares the counts with partition enumeration for 0..opts.MaxN.
// On disagreement it returns the result together with a MISMATCH error.
func (r *Runner) Verify(ctx context.Context, opts Options) (*VerifyResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.MaxN > MaxVerifyN {
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			"verify is limited to n <= %d, got %d", MaxVerifyN, opts.MaxN)
	}
	key := r.Keyer.VerifyKey(opts.KeyOpts())
	start := time.Now()

	var cached []*big.Int
	if r.lookup(ctx, StageVerify, key, opts.Refresh, &cached) && len(cached) == opts.MaxN+1 {
		return &VerifyResult{
			MaxN:       opts.MaxN,
			LevelSizes: opts.LevelSizes,
			Values:     cached,
			Duration:   time.Since(start),
			CacheHit:   true,
		}, nil
	}

	v, err := r.share(ctx, key, func(ctx context.Context) (any, error) {
		observability.Compute().OnComputeStart(ctx, StageVerify, opts.MaxN)
		res, err := r.verify(ctx, opts)
		res.Duration = time.Since(start)
		observability.Compute().OnComputeComplete(ctx, StageVerify, opts.MaxN, res.Duration, err)
		if err != nil {
			return res, err
		}

		// Only agreeing results are cached.
		r.store(ctx, StageVerify, key, res.Values, cache.TTLVerify)
		r.Logger.Info("verified sequence", "max_n", opts.MaxN, "duration", res.Duration.Round(time.Millisecond))
		return res, nil
	})
	res, _ := v.(*VerifyResult)
	return res, err
}

func (r *Runner) verify(ctx context.Context, opts Options) (*VerifyResult, error) {
	res := &VerifyResult{MaxN: opts.MaxN, LevelSizes: opts.LevelSizes}
	tables, err := count.Build(ctx, opts.countOptions())
	if err != nil {
		return res, err
	}
	dp := tables.Sequence()
	brute, err := partition.Sequence(opts.MaxN, opts.LevelSizes...)
	if err != nil {
		return res, err
	}
	res.Values = dp
	res.Mismatches = partition.Compare(dp, brute)
	if len(res.Mismatches) > 0 {
		first := res.Mismatches[0]
		r.Logger.Error("sequence mismatch", "n", first.N, "dp", first.DP, "partition", first.Brute)
		return res, errors.New(errors.ErrCodeMismatch,
			"%d of %d values disagree, first at n=%d", len(res.Mismatches), opts.MaxN+1, first.N)
	}
	return res, nil
}

// Simulate runs a Monte-Carlo simulation and reports each round through the
// simulation hooks.
func (r *Runner) Simulate(ctx context.Context, opts simulate.Options) (*simulate.Report, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	runID := opts.RunID
	onRound := opts.OnRound
	opts.OnRound = func(round simulate.Round) {
		r.Logger.Debug("simulation round",
			"round", round.Index,
			"samples", round.Samples,
			"distinct", round.Distinct,
			"duration", round.Duration.Round(time.Millisecond))
		observability.Simulation().OnRoundComplete(ctx, runID, round.Index, round.Samples, round.Distinct, round.Duration)
		if onRound != nil {
			onRound(round)
		}
	}

	report, err := simulate.Run(ctx, opts)
	if err != nil {
		observability.Simulation().OnRunComplete(ctx, runID, false, 0, err)
		return nil, err
	}
	observability.Simulation().OnRunComplete(ctx, runID, report.Stable, report.Coverage, nil)
	r.Logger.Info("simulation finished",
		"run", report.RunID,
		"blocks", report.Blocks,
		"distinct", report.Distinct,
		"expected", report.Expected,
		"stable", report.Stable,
		"duration", report.Duration.Round(time.Millisecond))
	return report, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// share runs fn once per key among concurrent callers. fn runs with the
// context of the caller that started it; when that caller goes away, a
// waiting caller whose own context is still live runs fn again.
func (r *Runner) share(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	for {
		ch := r.flight.DoChan(key, func() (any, error) { return fn(ctx) })
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			if res.Err != nil && ctx.Err() == nil && isContextErr(res.Err) {
				continue
			}
			return res.Val, res.Err
		}
	}
}

func isContextErr(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// lookup decodes a cached JSON value into out. Backend and decode errors are
// logged and treated as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string, refresh bool, out any) bool {
	if refresh {
		return false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		r.Logger.Warn("discarding corrupt cache entry", "type", keyType, "err", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
