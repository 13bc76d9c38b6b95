package count

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/matzehuels/towersets/pkg/errors"
)

// DefaultLevelSizes are the level sizes used when none are given: a level
// holds one block or two.
var DefaultLevelSizes = []int{1, 2}

// Options configures a table build.
type Options struct {
	// MaxN is the largest block count to compute. Must be >= 0.
	MaxN int

	// LevelSizes are the allowed numbers of blocks per level.
	// Nil means DefaultLevelSizes.
	LevelSizes []int

	// Workers bounds how many rows of the bounded table are filled
	// concurrently. Values <= 1 fill rows sequentially.
	Workers int
}

// Tables holds every intermediate table of one computation.
// A Tables value is read-only once Build returns; accessors return copies.
type Tables struct {
	maxN     int
	sizes    []int
	single   []*big.Int
	groups   [][]*big.Int
	bounded  *bounded
	sequence []*big.Int
}

// Build validates opts and computes all tables for block counts 0..opts.MaxN.
// Invalid options fail with an INVALID_ARGUMENT error before any work is done.
// The bounded table is cubic in MaxN; Build stops with ctx's error once ctx
// is done.
func Build(ctx context.Context, opts Options) (*Tables, error) {
	if err := errors.ValidateMaxN(opts.MaxN); err != nil {
		return nil, err
	}
	sizes := opts.LevelSizes
	if sizes == nil {
		sizes = DefaultLevelSizes
	}
	sizes, err := errors.ValidateLevelSizes(sizes)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	single := singleTowerCounts(opts.MaxN, sizes)
	groups := groupCounts(single)
	b, err := boundedSetCounts(ctx, groups, opts.MaxN, opts.Workers)
	if err != nil {
		return nil, err
	}

	return &Tables{
		maxN:     opts.MaxN,
		sizes:    sizes,
		single:   single,
		groups:   groups,
		bounded:  b,
		sequence: totals(b),
	}, nil
}

// Sequence returns the number of distinct tower-sets for every block count
// 0..maxN. With no sizes given, levels hold one or two blocks. Use Build to
// bound the computation with a context.
func Sequence(maxN int, sizes ...int) ([]*big.Int, error) {
	opts := Options{MaxN: maxN}
	if len(sizes) > 0 {
		opts.LevelSizes = sizes
	}
	t, err := Build(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	return t.sequence, nil
}

// MaxN returns the largest block count covered by the tables.
func (t *Tables) MaxN() int { return t.maxN }

// LevelSizes returns the normalised level sizes the tables were built with.
func (t *Tables) LevelSizes() []int { return slices.Clone(t.sizes) }

// Single returns the number of towers of exactly n blocks.
func (t *Tables) Single(n int) *big.Int {
	t.check("n", n)
	return new(big.Int).Set(t.single[n])
}

// Group returns the number of unordered multisets of m towers of n blocks each.
func (t *Tables) Group(m, n int) *big.Int {
	t.check("m", m)
	t.check("n", n)
	return new(big.Int).Set(t.groups[m][n])
}

// Bounded returns the number of multisets of m towers totalling n blocks
// with no tower taller than s blocks.
func (t *Tables) Bounded(m, n, s int) *big.Int {
	return new(big.Int).Set(t.bounded.at(m, n, s))
}

// SetTowers returns the number of multisets of exactly m towers totalling n
// blocks, with no height restriction.
func (t *Tables) SetTowers(m, n int) *big.Int {
	return t.Bounded(m, n, t.maxN)
}

// Sequence returns the tower-set counts for 0..MaxN.
func (t *Tables) Sequence() []*big.Int {
	out := make([]*big.Int, len(t.sequence))
	for i, v := range t.sequence {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

func (t *Tables) check(name string, i int) {
	if i < 0 || i > t.maxN {
		panic(fmt.Sprintf("count: %s = %d out of range [0, %d]", name, i, t.maxN))
	}
}
