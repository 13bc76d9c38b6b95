// Package pkg holds the towersets libraries.
//
// A tower is a stack of levels, each level made of one or two blocks (or any
// other allowed level size). A tower-set is an unordered collection of
// towers. The libraries count the distinct tower-sets that N identical
// blocks can form, exactly and for every N up to a bound.
//
// # Layout
//
//   - [count]: the table-based counting engine (single towers, groups of
//     equal towers, bounded sets, totals)
//   - [partition]: an independent count by integer partition enumeration
//   - [simulate]: Monte-Carlo sampling and exhaustive enumeration for small N
//   - [pipeline]: cached, logged stages used by the CLI and the API
//   - [cache]: file, redis and mongo result caches
//   - [api]: the HTTP API
//   - [config], [errors], [observability], [buildinfo]: shared infrastructure
//
// # Quick Start
//
//	values, err := count.Sequence(30)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(values[30])
//
// [count]: github.com/matzehuels/towersets/pkg/count
// [partition]: github.com/matzehuels/towersets/pkg/partition
// [simulate]: github.com/matzehuels/towersets/pkg/simulate
// [pipeline]: github.com/matzehuels/towersets/pkg/pipeline
// [cache]: github.com/matzehuels/towersets/pkg/cache
// [api]: github.com/matzehuels/towersets/pkg/api
// [config]: github.com/matzehuels/towersets/pkg/config
// [errors]: github.com/matzehuels/towersets/pkg/errors
// [observability]: github.com/matzehuels/towersets/pkg/observability
// [buildinfo]: github.com/matzehuels/towersets/pkg/buildinfo
package pkg
