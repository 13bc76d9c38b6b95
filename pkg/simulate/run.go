package simulate

import (
	"context"
	"math/big"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/towersets/pkg/count"
)

// Defaults for Options fields left at zero.
const (
	DefaultSamples = 10000
	DefaultRounds  = 2
	DefaultGrowth  = 10
)

// cancelCheckInterval is how many samples a worker draws between context checks.
const cancelCheckInterval = 1024

// Options configures a simulation run.
type Options struct {
	Blocks     int   // blocks per tower-set
	LevelSizes []int // nil means count.DefaultLevelSizes
	Samples    int   // samples in the first round
	Rounds     int   // number of rounds
	Growth     int   // sample multiplier between rounds
	Workers    int   // concurrent samplers per round
	Seed       uint64

	// RunID identifies the run in reports and hooks; empty means a new UUID.
	RunID string

	// OnRound, if set, is called after each round completes.
	OnRound func(Round)
}

func (o *Options) setDefaults() {
	if o.Samples <= 0 {
		o.Samples = DefaultSamples
	}
	if o.Rounds <= 0 {
		o.Rounds = DefaultRounds
	}
	if o.Growth <= 0 {
		o.Growth = DefaultGrowth
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
}

// Round summarises one round of sampling.
type Round struct {
	Index    int           `json:"index"`
	Samples  int           `json:"samples"`
	Distinct int           `json:"distinct"`
	Duration time.Duration `json:"duration"`
}

// Report is the outcome of a simulation run.
type Report struct {
	RunID      string   `json:"run_id"`
	Blocks     int      `json:"blocks"`
	LevelSizes []int    `json:"level_sizes"`
	Seed       uint64   `json:"seed"`
	Rounds     []Round  `json:"rounds"`
	Distinct   int      `json:"distinct"`
	Expected   *big.Int `json:"expected"`
	Coverage   float64  `json:"coverage"`

	// NewInLast lists configurations found in the last round but in no
	// earlier round; MissingInLast lists the reverse.
	NewInLast     []string `json:"new_in_last,omitempty"`
	MissingInLast []string `json:"missing_in_last,omitempty"`

	// Stable is true when the last round saw exactly the configurations
	// seen before it.
	Stable bool `json:"stable"`

	Duration time.Duration `json:"duration"`
}

// Run samples tower-sets in rounds of growing size and compares what each
// round found.
func Run(ctx context.Context, opts Options) (*Report, error) {
	opts.setDefaults()
	sampler, err := NewSampler(opts.Blocks, opts.LevelSizes)
	if err != nil {
		return nil, err
	}
	tables, err := count.Build(ctx, count.Options{MaxN: opts.Blocks, LevelSizes: sampler.sizes, Workers: opts.Workers})
	if err != nil {
		return nil, err
	}
	seq := tables.Sequence()

	start := time.Now()
	report := &Report{
		RunID:      opts.RunID,
		Blocks:     opts.Blocks,
		LevelSizes: slices.Clone(sampler.sizes),
		Seed:       opts.Seed,
		Expected:   seq[opts.Blocks],
	}

	earlier := make(map[string]struct{})
	var last map[string]struct{}
	samples := opts.Samples
	for r := 0; r < opts.Rounds; r++ {
		roundStart := time.Now()
		found, err := sampleRound(ctx, sampler, samples, opts.Workers, opts.Seed, r)
		if err != nil {
			return nil, err
		}
		round := Round{Index: r, Samples: samples, Distinct: len(found), Duration: time.Since(roundStart)}
		report.Rounds = append(report.Rounds, round)
		if opts.OnRound != nil {
			opts.OnRound(round)
		}

		if last != nil {
			for k := range last {
				earlier[k] = struct{}{}
			}
		}
		last = found
		samples *= opts.Growth
	}

	if opts.Rounds > 1 {
		for k := range last {
			if _, ok := earlier[k]; !ok {
				report.NewInLast = append(report.NewInLast, k)
			}
		}
		for k := range earlier {
			if _, ok := last[k]; !ok {
				report.MissingInLast = append(report.MissingInLast, k)
			}
		}
	}
	slices.Sort(report.NewInLast)
	slices.Sort(report.MissingInLast)
	report.Stable = opts.Rounds > 1 && len(report.NewInLast) == 0 && len(report.MissingInLast) == 0

	for k := range last {
		earlier[k] = struct{}{}
	}
	report.Distinct = len(earlier)
	if report.Expected.Sign() > 0 {
		cov, _ := new(big.Rat).SetFrac(big.NewInt(int64(report.Distinct)), report.Expected).Float64()
		report.Coverage = cov
	}
	report.Duration = time.Since(start)
	return report, nil
}

// sampleRound draws samples tower-sets split across workers. Each worker
// owns a PCG source seeded from the run seed, the round and its index, so a
// run is reproducible for a fixed seed and worker count.
func sampleRound(ctx context.Context, s *Sampler, samples, workers int, seed uint64, round int) (map[string]struct{}, error) {
	workers = min(workers, samples)
	results := make([]map[string]struct{}, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		share := samples / workers
		if w < samples%workers {
			share++
		}
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(round)<<32|uint64(w)))
			found := make(map[string]struct{})
			for i := 0; i < share; i++ {
				if i%cancelCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				found[Canonical(s.Sample(rng))] = struct{}{}
			}
			results[w] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]struct{})
	for _, found := range results {
		for k := range found {
			merged[k] = struct{}{}
		}
	}
	return merged, nil
}
