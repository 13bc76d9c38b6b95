package count

import "math/big"

// singleTowerCounts returns the number of towers of exactly n blocks for
// n = 0..nMax: the ordered compositions of n into parts from sizes.
//
// The empty tower is the only tower of 0 blocks. Indices below zero count
// as zero, which for sizes {1, 2} reproduces 1, 1, 2, 3, 5, ...
func singleTowerCounts(nMax int, sizes []int) []*big.Int {
	counts := make([]*big.Int, nMax+1)
	for n := range counts {
		c := new(big.Int)
		if n == 0 {
			c.SetInt64(1)
		}
		for _, j := range sizes {
			if n > 0 && n-j >= 0 {
				c.Add(c, counts[n-j])
			}
		}
		counts[n] = c
	}
	return counts
}
