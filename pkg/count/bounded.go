package count

import (
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"
)

// bounded is a dense (m, n, s) table of tower-set counts: multisets of m
// towers totalling n blocks with no tower taller than s blocks.
//
// Cells live in one flat slice; each (m, n) pair owns a contiguous row over s.
type bounded struct {
	size  int // maxN + 1
	cells []big.Int
}

func newBounded(maxN int) *bounded {
	size := maxN + 1
	return &bounded{
		size:  size,
		cells: make([]big.Int, size*size*size),
	}
}

func (b *bounded) at(m, n, s int) *big.Int {
	if m < 0 || n < 0 || s < 0 || m >= b.size || n >= b.size || s >= b.size {
		panic(fmt.Sprintf("count: bounded index (%d, %d, %d) out of range [0, %d)", m, n, s, b.size))
	}
	return &b.cells[(m*b.size+n)*b.size+s]
}

// row returns the cells for (m, n) indexed by the size ceiling s.
func (b *bounded) row(m, n int) []big.Int {
	start := (m*b.size + n) * b.size
	return b.cells[start : start+b.size]
}

// boundedSetCounts fills the bounded table from the group table. ctx is
// checked before every block count; a cancelled build returns ctx's error.
//
// Rows for a fixed n only read rows with a smaller n, so with workers > 1 the
// m rows of one n are filled concurrently and joined before n advances.
func boundedSetCounts(ctx context.Context, groups [][]*big.Int, maxN, workers int) (*bounded, error) {
	b := newBounded(maxN)
	for s := 0; s <= maxN; s++ {
		b.at(0, 0, s).SetInt64(1)
	}

	for n := 1; n <= maxN; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if workers <= 1 || n == 1 {
			for m := 1; m <= n; m++ {
				b.fillRow(groups, m, n)
			}
			continue
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for m := 1; m <= n; m++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				b.fillRow(groups, m, n)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// fillRow computes Bounded[m][n][s] for every ceiling s.
//
// Each (s, d) term counts the multisets whose tallest tower has exactly s
// blocks and exactly d towers of that height; the other m-d towers must stay
// at or below s-1. The terms are first collected at their exact maximum s and
// then prefix-summed, so a multiset counted at s is also counted under every
// ceiling x >= s.
func (b *bounded) fillRow(groups [][]*big.Int, m, n int) {
	row := b.row(m, n)
	for s := 1; s <= n-m+1; s++ {
		for d := 1; d <= m && d*s <= n; d++ {
			rest := b.at(m-d, n-d*s, s-1)
			if rest.Sign() == 0 {
				continue
			}
			g := groups[d][s]
			if g.Sign() == 0 {
				continue
			}
			row[s].Add(&row[s], mul(g, rest))
		}
	}
	for x := 1; x < len(row); x++ {
		row[x].Add(&row[x], &row[x-1])
	}
}
