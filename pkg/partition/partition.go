// Package partition counts tower-sets by brute force over integer partitions.
//
// It is an independent check of package count: every partition of n fixes
// the multiset of tower heights, and for each run of equal heights the
// number of distinct groups is a multiset coefficient over the towers of
// that height. The product over runs, summed over partitions, is the number
// of tower-sets with n blocks.
//
// The partition count grows exponentially, so this method is only practical
// for small n (a few dozen at most).
package partition

import (
	"math/big"

	"github.com/matzehuels/towersets/pkg/count"
	"github.com/matzehuels/towersets/pkg/errors"
)

// Group is a run of equal parts in a partition.
type Group struct {
	Value        int
	Multiplicity int
}

// Each calls fn with every partition of n as a non-increasing slice of
// positive parts. The slice is reused between calls; fn must copy it to keep
// it. Zero has exactly one partition, the empty one. Enumeration stops early
// when fn returns false.
func Each(n int, fn func(parts []int) bool) {
	if n < 0 {
		return
	}
	parts := make([]int, 0, n)
	var walk func(remaining, largest int) bool
	walk = func(remaining, largest int) bool {
		if remaining == 0 {
			return fn(parts)
		}
		for p := min(remaining, largest); p >= 1; p-- {
			parts = append(parts, p)
			ok := walk(remaining-p, p)
			parts = parts[:len(parts)-1]
			if !ok {
				return false
			}
		}
		return true
	}
	walk(n, n)
}

// All returns every partition of n, largest parts first.
func All(n int) [][]int {
	var out [][]int
	Each(n, func(parts []int) bool {
		out = append(out, append([]int(nil), parts...))
		return true
	})
	return out
}

// Groups collapses a sorted partition into runs of equal parts.
func Groups(parts []int) []Group {
	var groups []Group
	for i := 0; i < len(parts); {
		j := i
		for j < len(parts) && parts[j] == parts[i] {
			j++
		}
		groups = append(groups, Group{Value: parts[i], Multiplicity: j - i})
		i = j
	}
	return groups
}

// towers counts single towers per height with a direct recursion over the
// top level, kept separate from package count on purpose.
func towers(maxN int, sizes []int) []*big.Int {
	f := make([]*big.Int, maxN+1)
	f[0] = big.NewInt(1)
	for n := 1; n <= maxN; n++ {
		f[n] = new(big.Int)
		for _, top := range sizes {
			if top <= n {
				f[n].Add(f[n], f[n-top])
			}
		}
	}
	return f
}

// Sequence returns the tower-set counts for 0..maxN by enumerating
// partitions. With no sizes given, levels hold one or two blocks.
func Sequence(maxN int, sizes ...int) ([]*big.Int, error) {
	if err := errors.ValidateMaxN(maxN); err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		sizes = count.DefaultLevelSizes
	}
	sizes, err := errors.ValidateLevelSizes(sizes)
	if err != nil {
		return nil, err
	}

	f := towers(maxN, sizes)
	out := make([]*big.Int, maxN+1)
	for n := 0; n <= maxN; n++ {
		total := new(big.Int)
		Each(n, func(parts []int) bool {
			ways := big.NewInt(1)
			for _, g := range Groups(parts) {
				ways.Mul(ways, count.Multichoose(f[g.Value], g.Multiplicity))
				if ways.Sign() == 0 {
					break
				}
			}
			total.Add(total, ways)
			return true
		})
		out[n] = total
	}
	return out, nil
}

// Mismatch records an index where two sequences disagree.
type Mismatch struct {
	N     int      `json:"n"`
	DP    *big.Int `json:"dp"`
	Brute *big.Int `json:"brute"`
}

// Compare returns every index where dp and brute differ. Indices present in
// only one of the slices are reported with a nil value for the other.
func Compare(dp, brute []*big.Int) []Mismatch {
	var out []Mismatch
	for n := 0; n < max(len(dp), len(brute)); n++ {
		var a, b *big.Int
		if n < len(dp) {
			a = dp[n]
		}
		if n < len(brute) {
			b = brute[n]
		}
		if a == nil || b == nil || a.Cmp(b) != 0 {
			out = append(out, Mismatch{N: n, DP: a, Brute: b})
		}
	}
	return out
}
