package simulate

import (
	"slices"

	"github.com/matzehuels/towersets/pkg/count"
	"github.com/matzehuels/towersets/pkg/errors"
	"github.com/matzehuels/towersets/pkg/partition"
)

// Enumerate returns the canonical form of every distinct tower-set with n
// blocks, sorted. Zero blocks yield the empty set only. Nil sizes mean
// count.DefaultLevelSizes.
func Enumerate(n int, sizes []int) ([]string, error) {
	if err := errors.ValidateMaxN(n); err != nil {
		return nil, err
	}
	if sizes == nil {
		sizes = count.DefaultLevelSizes
	}
	sizes, err := errors.ValidateLevelSizes(sizes)
	if err != nil {
		return nil, err
	}

	shapes := make(map[int][]string)
	var out []string
	partition.Each(n, func(parts []int) bool {
		var pick func(groups []partition.Group, chosen []string)
		pick = func(groups []partition.Group, chosen []string) {
			if len(groups) == 0 {
				out = append(out, canonicalStrings(slices.Clone(chosen)))
				return
			}
			g := groups[0]
			towers, ok := shapes[g.Value]
			if !ok {
				towers = compositions(g.Value, sizes)
				shapes[g.Value] = towers
			}
			multisets(len(towers), g.Multiplicity, func(idx []int) {
				next := slices.Clone(chosen)
				for _, i := range idx {
					next = append(next, towers[i])
				}
				pick(groups[1:], next)
			})
		}
		pick(partition.Groups(parts), nil)
		return true
	})
	slices.Sort(out)
	return out, nil
}

// compositions lists every tower of exactly n blocks, rendered as strings.
func compositions(n int, sizes []int) []string {
	var out []string
	var levels Tower
	var walk func(remaining int)
	walk = func(remaining int) {
		if remaining == 0 {
			out = append(out, levels.String())
			return
		}
		for _, s := range sizes {
			if s > remaining {
				continue
			}
			levels = append(levels, s)
			walk(remaining - s)
			levels = levels[:len(levels)-1]
		}
	}
	walk(n)
	return out
}

// multisets calls fn with every non-decreasing index sequence of length m
// over [0, k): the m-multisets of k kinds.
func multisets(k, m int, fn func(idx []int)) {
	idx := make([]int, m)
	var walk func(pos, from int)
	walk = func(pos, from int) {
		if pos == m {
			fn(idx)
			return
		}
		for i := from; i < k; i++ {
			idx[pos] = i
			walk(pos+1, i)
		}
	}
	walk(0, 0)
}
