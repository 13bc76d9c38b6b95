// Package count computes how many distinct sets of towers can be built from
// n blocks.
//
// A tower is an ordered stack of levels, each level holding a number of
// blocks drawn from a fixed set of allowed level sizes ({1, 2} by default).
// Two towers with the same levels in a different order are different. A
// tower-set is an unordered collection of towers: swapping two towers gives
// the same set. The package counts tower-sets, it never materialises them.
//
// # Tables
//
// The computation derives four tables bottom-up, each one complete before the
// next is started:
//
//  1. Single[n]: towers of exactly n blocks (ordered compositions of n).
//  2. Group[m][n]: unordered multisets of m towers, all of size n. This is
//     the multiset coefficient C(Single[n]+m-1, m).
//  3. Bounded[m][n][s]: multisets of m towers totalling n blocks where no
//     tower is taller than s blocks. The recurrence conditions on the largest
//     tower size s and on how many towers d reach it exactly:
//
//     Group[d][s] * Bounded[m-d][n-d*s][s-1]
//
//  4. Sequence[n]: the sum of Bounded[m][n][maxN] over m.
//
// All cells are arbitrary-precision integers; the sequence grows faster than
// any fixed-width type allows long before n = 50.
//
// # Usage
//
//	values, err := count.Sequence(20)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(values[20])
//
// Use [Build] to inspect the intermediate tables.
package count
