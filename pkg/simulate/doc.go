// Package simulate builds tower-sets explicitly, as a check on the counts
// produced by package count.
//
// Two tools live here:
//
//   - [Enumerate] lists every distinct tower-set of n blocks in canonical
//     form. It is exact but exponential, so it only suits small n.
//   - [Run] draws random tower-sets in rounds of growing sample size and
//     reports how many distinct configurations each round found and whether
//     the last round turned up anything new. When the sampler has converged
//     the distinct count should approach the exact count.
//
// Both identify a tower-set by [Canonical]: each tower is written as its
// level sizes joined by "/", and the towers are sorted so their order does
// not matter.
package simulate
