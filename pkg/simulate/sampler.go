package simulate

import (
	"math/rand/v2"

	"github.com/matzehuels/towersets/pkg/count"
	"github.com/matzehuels/towersets/pkg/errors"
)

// Sampler draws random tower-sets with a fixed number of blocks.
// A Sampler is immutable and safe for concurrent use with separate sources.
type Sampler struct {
	blocks int
	sizes  []int
	// reach[h] reports whether a single tower of h blocks can be built.
	reach []bool
}

// NewSampler returns a sampler for tower-sets of exactly blocks blocks.
// Nil sizes mean count.DefaultLevelSizes. It fails when no tower-set of
// that many blocks exists, e.g. an odd count with only two-block levels.
func NewSampler(blocks int, sizes []int) (*Sampler, error) {
	if err := errors.ValidateMaxN(blocks); err != nil {
		return nil, err
	}
	if sizes == nil {
		sizes = count.DefaultLevelSizes
	}
	sizes, err := errors.ValidateLevelSizes(sizes)
	if err != nil {
		return nil, err
	}

	reach := make([]bool, blocks+1)
	reach[0] = true
	for h := 1; h <= blocks; h++ {
		for _, s := range sizes {
			if s <= h && reach[h-s] {
				reach[h] = true
				break
			}
		}
	}
	// A set of towers is a sum of tower heights, and heights are sums of
	// level sizes, so a set exists exactly when a single tower does.
	if !reach[blocks] {
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			"no tower-set of %d blocks exists with level sizes %v", blocks, sizes)
	}
	return &Sampler{blocks: blocks, sizes: sizes, reach: reach}, nil
}

// Blocks returns the number of blocks in every sampled set.
func (s *Sampler) Blocks() int { return s.blocks }

// Sample draws one tower-set. It first picks a number of towers and a random
// split of the blocks between them, retrying until every tower height is
// buildable, then stacks random levels onto each tower.
func (s *Sampler) Sample(rng *rand.Rand) Set {
	if s.blocks == 0 {
		return Set{}
	}
	heights := s.heights(rng)
	set := make(Set, len(heights))
	for i, h := range heights {
		set[i] = s.tower(rng, h)
	}
	return set
}

func (s *Sampler) heights(rng *rand.Rand) []int {
	for {
		m := 1 + rng.IntN(s.blocks)
		// m-1 distinct cut points in 1..blocks-1 split the blocks into m
		// non-empty towers.
		cuts := rng.Perm(s.blocks - 1)[:m-1]
		marks := make([]bool, s.blocks)
		for _, c := range cuts {
			marks[c+1] = true
		}
		heights := make([]int, 0, m)
		last := 0
		ok := true
		for i := 1; i <= s.blocks; i++ {
			if i == s.blocks || marks[i] {
				h := i - last
				if !s.reach[h] {
					ok = false
					break
				}
				heights = append(heights, h)
				last = i
			}
		}
		if ok {
			return heights
		}
	}
}

func (s *Sampler) tower(rng *rand.Rand, h int) Tower {
	var t Tower
	candidates := make([]int, 0, len(s.sizes))
	for remaining := h; remaining > 0; {
		candidates = candidates[:0]
		for _, size := range s.sizes {
			if size <= remaining && s.reach[remaining-size] {
				candidates = append(candidates, size)
			}
		}
		level := candidates[rng.IntN(len(candidates))]
		t = append(t, level)
		remaining -= level
	}
	return t
}
