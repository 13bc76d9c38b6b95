package partition

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/matzehuels/towersets/pkg/count"
	"github.com/matzehuels/towersets/pkg/errors"
)

func TestAll(t *testing.T) {
	want := [][]int{
		{4},
		{3, 1},
		{2, 2},
		{2, 1, 1},
		{1, 1, 1, 1},
	}
	if got := All(4); !reflect.DeepEqual(got, want) {
		t.Errorf("All(4) = %v, want %v", got, want)
	}
}

func TestAllZero(t *testing.T) {
	got := All(0)
	if len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("All(0) = %v, want one empty partition", got)
	}
	if got := All(-1); got != nil {
		t.Errorf("All(-1) = %v, want nil", got)
	}
}

func TestPartitionNumbers(t *testing.T) {
	want := []int{1, 1, 2, 3, 5, 7, 11, 15, 22, 30, 42, 56, 77, 101, 135}
	for n, w := range want {
		if got := len(All(n)); got != w {
			t.Errorf("len(All(%d)) = %d, want %d", n, got, w)
		}
	}
}

func TestEachStopsEarly(t *testing.T) {
	calls := 0
	Each(10, func([]int) bool {
		calls++
		return calls < 3
	})
	if calls != 3 {
		t.Errorf("Each called fn %d times, want 3", calls)
	}
}

func TestGroups(t *testing.T) {
	got := Groups([]int{3, 3, 2, 1, 1, 1})
	want := []Group{{3, 2}, {2, 1}, {1, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Groups() = %v, want %v", got, want)
	}
	if got := Groups(nil); got != nil {
		t.Errorf("Groups(nil) = %v, want nil", got)
	}
}

func TestSequenceMatchesDP(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
		maxN  int
	}{
		{"default", nil, 14},
		{"ones", []int{1}, 12},
		{"twos", []int{2}, 12},
		{"one to three", []int{1, 2, 3}, 12},
		{"gapped", []int{1, 3}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brute, err := Sequence(tt.maxN, tt.sizes...)
			if err != nil {
				t.Fatalf("partition.Sequence() error: %v", err)
			}
			dp, err := count.Sequence(tt.maxN, tt.sizes...)
			if err != nil {
				t.Fatalf("count.Sequence() error: %v", err)
			}
			if mm := Compare(dp, brute); len(mm) > 0 {
				for _, m := range mm {
					t.Errorf("n=%d: dp %s, brute %s", m.N, m.DP, m.Brute)
				}
			}
		})
	}
}

func TestSequenceFour(t *testing.T) {
	got, err := Sequence(4)
	if err != nil {
		t.Fatal(err)
	}
	if got[4].Int64() != 14 {
		t.Errorf("Sequence(4)[4] = %s, want 14", got[4])
	}
}

func TestSequenceInvalid(t *testing.T) {
	if _, err := Sequence(-1); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("Sequence(-1) error = %v, want INVALID_ARGUMENT", err)
	}
	if _, err := Sequence(3, 0); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("Sequence(3, 0) error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestCompare(t *testing.T) {
	a := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}
	b := []*big.Int{big.NewInt(1), big.NewInt(5)}

	got := Compare(a, b)
	if len(got) != 2 {
		t.Fatalf("Compare() returned %d mismatches, want 2", len(got))
	}
	if got[0].N != 1 || got[0].DP.Int64() != 2 || got[0].Brute.Int64() != 5 {
		t.Errorf("first mismatch = %+v", got[0])
	}
	if got[1].N != 2 || got[1].Brute != nil {
		t.Errorf("second mismatch = %+v, want missing brute value", got[1])
	}
	if got := Compare(a, a); len(got) != 0 {
		t.Errorf("Compare(a, a) = %v, want none", got)
	}
}
