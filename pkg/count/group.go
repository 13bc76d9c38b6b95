package count

import "math/big"

// groupCounts returns g[m][n], the number of unordered multisets of m towers
// that each hold exactly n blocks, for 0 <= m, n <= len(single)-1.
func groupCounts(single []*big.Int) [][]*big.Int {
	size := len(single)
	g := make([][]*big.Int, size)
	for m := range g {
		g[m] = make([]*big.Int, size)
		for n := range g[m] {
			g[m][n] = Multichoose(single[n], m)
		}
	}
	return g
}
