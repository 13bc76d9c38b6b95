package count

import (
	"context"
	"math/big"
	"testing"

	"github.com/matzehuels/towersets/pkg/errors"
)

// knownValues are the tower-set counts for level sizes {1, 2}.
var knownValues = []int64{1, 1, 3, 6, 14, 28, 61, 122, 253, 505, 1017, 2008, 3976, 7769, 15169, 29379}

func toInts(t *testing.T, vals []*big.Int) []int64 {
	t.Helper()
	out := make([]int64, len(vals))
	for i, v := range vals {
		if !v.IsInt64() {
			t.Fatalf("value %d = %s does not fit int64", i, v)
		}
		out[i] = v.Int64()
	}
	return out
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSequenceSmall(t *testing.T) {
	tests := []struct {
		maxN int
		want []int64
	}{
		{0, []int64{1}},
		{1, []int64{1, 1}},
		{2, []int64{1, 1, 3}},
		{4, []int64{1, 1, 3, 6, 14}},
	}
	for _, tt := range tests {
		got, err := Sequence(tt.maxN)
		if err != nil {
			t.Fatalf("Sequence(%d) error: %v", tt.maxN, err)
		}
		if g := toInts(t, got); !equalInts(g, tt.want) {
			t.Errorf("Sequence(%d) = %v, want %v", tt.maxN, g, tt.want)
		}
	}
}

func TestSequenceKnownValues(t *testing.T) {
	got, err := Sequence(len(knownValues) - 1)
	if err != nil {
		t.Fatalf("Sequence() error: %v", err)
	}
	if g := toInts(t, got); !equalInts(g, knownValues) {
		t.Errorf("Sequence() = %v, want %v", g, knownValues)
	}
}

func TestSequenceFifty(t *testing.T) {
	got, err := Sequence(50)
	if err != nil {
		t.Fatalf("Sequence(50) error: %v", err)
	}
	want, _ := new(big.Int).SetString("65881394135336", 10)
	if got[50].Cmp(want) != 0 {
		t.Errorf("Sequence(50)[50] = %s, want %s", got[50], want)
	}
}

func TestSequenceLevelSizes(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
		want  []int64
	}{
		// Only single-block levels: every tower of n blocks is unique, so the
		// count is the partition number p(n).
		{"ones", []int{1}, []int64{1, 1, 2, 3, 5, 7, 11, 15, 22}},
		{"twos", []int{2}, []int64{1, 0, 1, 0, 2, 0, 3, 0, 5}},
		{"one to three", []int{1, 2, 3}, []int64{1, 1, 3, 7, 17, 38, 90, 200, 455}},
		{"unsorted duplicates", []int{2, 1, 2}, knownValues[:9]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sequence(8, tt.sizes...)
			if err != nil {
				t.Fatalf("Sequence() error: %v", err)
			}
			if g := toInts(t, got); !equalInts(g, tt.want) {
				t.Errorf("Sequence() = %v, want %v", g, tt.want)
			}
		})
	}
}

func TestBuildInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative max", Options{MaxN: -1}},
		{"empty sizes", Options{MaxN: 3, LevelSizes: []int{}}},
		{"zero size", Options{MaxN: 3, LevelSizes: []int{0, 1}}},
		{"negative size", Options{MaxN: 3, LevelSizes: []int{-2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := Build(context.Background(), tt.opts)
			if err == nil {
				t.Fatal("Build() should fail")
			}
			if tables != nil {
				t.Error("Build() should not return tables on error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidArgument)
			}
		})
	}
}

func TestSingleTowerRecurrence(t *testing.T) {
	tables, err := Build(context.Background(), Options{MaxN: 20})
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{1, 1, 2, 3, 5, 8, 13}
	for n, w := range want {
		if got := tables.Single(n).Int64(); got != w {
			t.Errorf("Single(%d) = %d, want %d", n, got, w)
		}
	}
	for n := 3; n <= 20; n++ {
		sum := new(big.Int).Add(tables.Single(n-1), tables.Single(n-2))
		if tables.Single(n).Cmp(sum) != 0 {
			t.Errorf("Single(%d) = %s, want %s", n, tables.Single(n), sum)
		}
	}
}

func TestGroupCounts(t *testing.T) {
	tables, err := Build(context.Background(), Options{MaxN: 10})
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n <= 10; n++ {
		if got := tables.Group(0, n); got.Cmp(bigOne) != 0 {
			t.Errorf("Group(0, %d) = %s, want 1", n, got)
		}
		if got := tables.Group(1, n); got.Cmp(tables.Single(n)) != 0 {
			t.Errorf("Group(1, %d) = %s, want %s", n, got, tables.Single(n))
		}
	}
	// Three towers of two blocks, each either "2" or "1/1": C(2+3-1, 3) = 4.
	if got := tables.Group(3, 2).Int64(); got != 4 {
		t.Errorf("Group(3, 2) = %d, want 4", got)
	}
}

func TestBoundedInvariants(t *testing.T) {
	const maxN = 12
	tables, err := Build(context.Background(), Options{MaxN: maxN})
	if err != nil {
		t.Fatal(err)
	}

	for s := 0; s <= maxN; s++ {
		if got := tables.Bounded(0, 0, s); got.Cmp(bigOne) != 0 {
			t.Errorf("Bounded(0, 0, %d) = %s, want 1", s, got)
		}
	}

	for m := 0; m <= maxN; m++ {
		for n := 0; n <= maxN; n++ {
			for s := 0; s <= maxN; s++ {
				v := tables.Bounded(m, n, s)
				if v.Sign() < 0 {
					t.Fatalf("Bounded(%d, %d, %d) = %s is negative", m, n, s, v)
				}
				if (n < m || (m == 0 && n > 0)) && v.Sign() != 0 {
					t.Errorf("Bounded(%d, %d, %d) = %s, want 0", m, n, s, v)
				}
				if s > 0 && v.Cmp(tables.Bounded(m, n, s-1)) < 0 {
					t.Errorf("Bounded(%d, %d, %d) decreases from s-1", m, n, s)
				}
				if s >= n && v.Cmp(tables.Bounded(m, n, n)) != 0 {
					t.Errorf("Bounded(%d, %d, %d) = %s, want Bounded(%d, %d, %d) = %s",
						m, n, s, v, m, n, n, tables.Bounded(m, n, n))
				}
			}
		}
	}
}

func TestSetTowersTable(t *testing.T) {
	tables, err := Build(context.Background(), Options{MaxN: 6})
	if err != nil {
		t.Fatal(err)
	}
	// want[m][n]
	want := [][]int64{
		{1, 0, 0, 0, 0, 0, 0},
		{0, 1, 2, 3, 5, 8, 13},
		{0, 0, 1, 2, 6, 11, 24},
		{0, 0, 0, 1, 2, 6, 15},
		{0, 0, 0, 0, 1, 2, 6},
		{0, 0, 0, 0, 0, 1, 2},
		{0, 0, 0, 0, 0, 0, 1},
	}
	for m, row := range want {
		for n, w := range row {
			if got := tables.SetTowers(m, n).Int64(); got != w {
				t.Errorf("SetTowers(%d, %d) = %d, want %d", m, n, got, w)
			}
		}
	}
}

func TestSequenceIsSumOverTowerCounts(t *testing.T) {
	tables, err := Build(context.Background(), Options{MaxN: 15})
	if err != nil {
		t.Fatal(err)
	}
	seq := tables.Sequence()
	if seq[0].Cmp(bigOne) != 0 {
		t.Errorf("Sequence()[0] = %s, want 1", seq[0])
	}
	for n := 1; n <= 15; n++ {
		sum := new(big.Int)
		for m := 0; m <= n; m++ {
			sum.Add(sum, tables.SetTowers(m, n))
		}
		if sum.Cmp(seq[n]) != 0 {
			t.Errorf("sum of SetTowers(., %d) = %s, want %s", n, sum, seq[n])
		}
	}
}

func TestWorkersMatchSequential(t *testing.T) {
	seq, err := Build(context.Background(), Options{MaxN: 30})
	if err != nil {
		t.Fatal(err)
	}
	par, err := Build(context.Background(), Options{MaxN: 30, Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	a, b := seq.Sequence(), par.Sequence()
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			t.Errorf("n=%d: sequential %s, parallel %s", i, a[i], b[i])
		}
	}
}

func TestSequenceIdempotent(t *testing.T) {
	a, err := Sequence(25)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Sequence(25)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			t.Errorf("n=%d: first %s, second %s", i, a[i], b[i])
		}
		if a[i] == b[i] {
			t.Errorf("n=%d: calls share a *big.Int", i)
		}
	}
}

func TestTablesAccessorsReturnCopies(t *testing.T) {
	tables, err := Build(context.Background(), Options{MaxN: 5})
	if err != nil {
		t.Fatal(err)
	}
	tables.Single(3).SetInt64(99)
	tables.Bounded(2, 4, 4).SetInt64(99)
	tables.Sequence()[5].SetInt64(99)

	if got := tables.Single(3).Int64(); got != 3 {
		t.Errorf("Single(3) = %d after mutating a copy, want 3", got)
	}
	if got := tables.Bounded(2, 4, 4).Int64(); got != 6 {
		t.Errorf("Bounded(2, 4, 4) = %d after mutating a copy, want 6", got)
	}
	if got := tables.Sequence()[5].Int64(); got != 28 {
		t.Errorf("Sequence()[5] = %d after mutating a copy, want 28", got)
	}
}

func TestTablesIndexPanics(t *testing.T) {
	tables, err := Build(context.Background(), Options{MaxN: 3})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("Bounded(0, 0, 4) should panic")
		}
	}()
	tables.Bounded(0, 0, 4)
}

func TestSequenceBeyondUint64(t *testing.T) {
	values, err := Sequence(100)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := new(big.Int).SetString("173123757792263374646036230", 10)
	if values[100].Cmp(want) != 0 {
		t.Errorf("Sequence(100)[100] = %s, want %s", values[100], want)
	}
	if values[100].IsUint64() {
		t.Error("value at n=100 should exceed uint64")
	}
}

// eulerTransform counts multisets of towers directly from the tower counts:
// a(n) = 1/n Σ_{k=1..n} b(k) a(n-k) with b(k) = Σ_{d|k} d·towers(d).
func eulerTransform(towers []*big.Int) []*big.Int {
	n := len(towers) - 1
	b := make([]*big.Int, n+1)
	for k := 1; k <= n; k++ {
		b[k] = new(big.Int)
		for d := 1; d <= k; d++ {
			if k%d == 0 {
				b[k].Add(b[k], new(big.Int).Mul(big.NewInt(int64(d)), towers[d]))
			}
		}
	}
	a := make([]*big.Int, n+1)
	a[0] = big.NewInt(1)
	for i := 1; i <= n; i++ {
		sum := new(big.Int)
		for k := 1; k <= i; k++ {
			sum.Add(sum, new(big.Int).Mul(b[k], a[i-k]))
		}
		a[i] = sum.Quo(sum, big.NewInt(int64(i)))
	}
	return a
}

func TestSequenceMatchesEulerTransform(t *testing.T) {
	for _, sizes := range [][]int{{1, 2}, {1, 2, 3}, {2, 3}} {
		tables, err := Build(context.Background(), Options{MaxN: 90, LevelSizes: sizes, Workers: 4})
		if err != nil {
			t.Fatal(err)
		}
		towers := make([]*big.Int, 91)
		for n := range towers {
			towers[n] = tables.Single(n)
		}
		want := eulerTransform(towers)
		got := tables.Sequence()
		for n := range want {
			if got[n].Cmp(want[n]) != 0 {
				t.Errorf("sizes %v, n=%d: got %s, want %s", sizes, n, got[n], want[n])
				break
			}
		}
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		tables, err := Build(ctx, Options{MaxN: 200, Workers: workers})
		if err != context.Canceled {
			t.Errorf("workers=%d: Build() error = %v, want context.Canceled", workers, err)
		}
		if tables != nil {
			t.Errorf("workers=%d: cancelled Build() returned tables", workers)
		}
	}
}
