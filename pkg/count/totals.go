package count

import "math/big"

// totals sums the unconstrained tower-set counts over the number of towers.
// The value for zero blocks is 1: the empty set.
func totals(b *bounded) []*big.Int {
	maxN := b.size - 1
	seq := make([]*big.Int, b.size)
	seq[0] = big.NewInt(1)
	for n := 1; n <= maxN; n++ {
		sum := new(big.Int)
		for m := 1; m <= n; m++ {
			sum.Add(sum, b.at(m, n, maxN))
		}
		seq[n] = sum
	}
	return seq
}
