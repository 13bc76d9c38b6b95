package count

import (
	"math/big"

	"github.com/remyoudompheng/bigfft"
)

var bigOne = big.NewInt(1)

// mul returns x*y as a new integer. Large operands are multiplied with an
// FFT; bigfft falls back to math/big below its own threshold.
func mul(x, y *big.Int) *big.Int {
	return bigfft.Mul(x, y)
}

// Choose returns the binomial coefficient C(n, k), or 0 when n < k.
//
// The product is built incrementally: after step i the accumulator holds
// C(n, i+1), so every division is exact.
func Choose(n *big.Int, k int) *big.Int {
	if k < 0 || n.Cmp(big.NewInt(int64(k))) < 0 {
		return new(big.Int)
	}
	r := big.NewInt(1)
	term := new(big.Int)
	for i := 0; i < k; i++ {
		term.Sub(n, big.NewInt(int64(i)))
		r = mul(r, term)
		r.Quo(r, big.NewInt(int64(i+1)))
	}
	return r
}

// Multichoose returns the number of multisets of size m drawn from k kinds,
// C(k+m-1, m). Choosing nothing is always possible; choosing something from
// no kinds is not.
func Multichoose(k *big.Int, m int) *big.Int {
	if m == 0 {
		return big.NewInt(1)
	}
	if k.Sign() <= 0 || m < 0 {
		return new(big.Int)
	}
	top := new(big.Int).Add(k, big.NewInt(int64(m)))
	top.Sub(top, bigOne)
	return Choose(top, m)
}
