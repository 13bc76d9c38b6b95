package pipeline

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/towersets/pkg/cache"
	"github.com/matzehuels/towersets/pkg/errors"
	"github.com/matzehuels/towersets/pkg/observability"
	"github.com/matzehuels/towersets/pkg/simulate"
)

type recordingHooks struct {
	observability.NoopComputeHooks
	observability.NoopCacheHooks
	observability.NoopSimulationHooks

	mu     sync.Mutex
	starts []string
	hits   int
	misses int
	sets   int
	rounds []string
}

func (h *recordingHooks) OnComputeStart(_ context.Context, stage string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts = append(h.starts, stage)
}

func (h *recordingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *recordingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *recordingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets++
}

func (h *recordingHooks) OnRoundComplete(_ context.Context, runID string, _, _, _ int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rounds = append(h.rounds, runID)
}

func installHooks(t *testing.T) *recordingHooks {
	t.Helper()
	h := &recordingHooks{}
	observability.SetComputeHooks(h)
	observability.SetCacheHooks(h)
	observability.SetSimulationHooks(h)
	t.Cleanup(observability.Reset)
	return h
}

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return NewRunner(c, nil, logger), &buf
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Errorf("NewRunner(nil, nil, nil) left nil fields: %+v", r)
	}
}

func TestRunnerSequenceCaches(t *testing.T) {
	hooks := installHooks(t)
	r, _ := newTestRunner(t)
	ctx := context.Background()

	first, err := r.Sequence(ctx, Options{MaxN: 10})
	if err != nil {
		t.Fatalf("Sequence() error: %v", err)
	}
	if first.CacheHit {
		t.Error("first call should miss the cache")
	}
	if first.Values[10].Int64() != 1017 {
		t.Errorf("Values[10] = %s, want 1017", first.Values[10])
	}

	second, err := r.Sequence(ctx, Options{MaxN: 10})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second call should hit the cache")
	}
	for i := range first.Values {
		if first.Values[i].Cmp(second.Values[i]) != 0 {
			t.Errorf("cached value %d = %s, want %s", i, second.Values[i], first.Values[i])
		}
	}

	refreshed, err := r.Sequence(ctx, Options{MaxN: 10, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("refresh should bypass the cache")
	}

	if len(hooks.starts) != 2 || hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 2 {
		t.Errorf("hooks: starts %v, hits %d, misses %d, sets %d", hooks.starts, hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestRunnerSequenceLevelSizesNotShared(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	if _, err := r.Sequence(ctx, Options{MaxN: 6}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Sequence(ctx, Options{MaxN: 6, LevelSizes: []int{1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("different level sizes must not share cache entries")
	}
	if res.Values[6].Int64() != 90 {
		t.Errorf("Values[6] = %s, want 90", res.Values[6])
	}
}

func TestRunnerSequenceCorruptCache(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()
	opts := Options{MaxN: 4}
	_ = opts.ValidateAndSetDefaults()
	key := r.Keyer.SequenceKey(opts.KeyOpts())
	if err := r.Cache.Set(ctx, key, []byte("{not json"), time.Hour); err != nil {
		t.Fatal(err)
	}

	res, err := r.Sequence(ctx, Options{MaxN: 4})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("corrupt entry should be treated as a miss")
	}
	if res.Values[4].Int64() != 14 {
		t.Errorf("Values[4] = %s, want 14", res.Values[4])
	}
}

func TestRunnerSequenceInvalid(t *testing.T) {
	r, _ := newTestRunner(t)
	_, err := r.Sequence(context.Background(), Options{MaxN: -3})
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("Sequence(-3) error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestRunnerTable(t *testing.T) {
	hooks := installHooks(t)
	r, _ := newTestRunner(t)
	tables, err := r.Table(context.Background(), Options{MaxN: 6})
	if err != nil {
		t.Fatal(err)
	}
	if got := tables.SetTowers(2, 6).Int64(); got != 24 {
		t.Errorf("SetTowers(2, 6) = %d, want 24", got)
	}
	if len(hooks.starts) != 1 || hooks.starts[0] != StageTable {
		t.Errorf("compute starts = %v, want [table]", hooks.starts)
	}
}

func TestRunnerVerify(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	res, err := r.Verify(ctx, Options{MaxN: 12})
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if !res.OK() {
		t.Errorf("Verify() mismatches: %+v", res.Mismatches)
	}
	if res.Values[12].Int64() != 3976 {
		t.Errorf("Values[12] = %s, want 3976", res.Values[12])
	}

	again, err := r.Verify(ctx, Options{MaxN: 12})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit {
		t.Error("second verify should hit the cache")
	}
}

func TestRunnerVerifyLimit(t *testing.T) {
	r, _ := newTestRunner(t)
	_, err := r.Verify(context.Background(), Options{MaxN: MaxVerifyN + 1})
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("Verify() error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestRunnerSimulate(t *testing.T) {
	hooks := installHooks(t)
	r, logs := newTestRunner(t)

	report, err := r.Simulate(context.Background(), simulate.Options{
		Blocks:  3,
		Samples: 2000,
		Rounds:  2,
		Seed:    9,
	})
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if report.Expected.Int64() != 6 || report.Distinct != 6 {
		t.Errorf("expected %s, distinct %d; want 6 and 6", report.Expected, report.Distinct)
	}
	if len(hooks.rounds) != 2 {
		t.Fatalf("round hooks = %d, want 2", len(hooks.rounds))
	}
	for _, id := range hooks.rounds {
		if id != report.RunID {
			t.Errorf("round hook run id = %q, want %q", id, report.RunID)
		}
	}
	if !bytes.Contains(logs.Bytes(), []byte("simulation finished")) {
		t.Error("Simulate should log completion")
	}
}
