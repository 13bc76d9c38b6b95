package pipeline

import (
	"bytes"
	"encoding/json"
	"math/big"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/towersets/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"csv", false},
		{"svg", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v", tt.format, errors.GetCode(err))
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{MaxN: 5}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if !reflect.DeepEqual(opts.LevelSizes, []int{1, 2}) {
		t.Errorf("LevelSizes = %v, want [1 2]", opts.LevelSizes)
	}

	opts = Options{MaxN: 5, LevelSizes: []int{3, 1, 1}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(opts.LevelSizes, []int{1, 3}) {
		t.Errorf("LevelSizes = %v, want [1 3]", opts.LevelSizes)
	}

	for _, bad := range []Options{{MaxN: -1}, {MaxN: 1, LevelSizes: []int{}}, {MaxN: 1, LevelSizes: []int{-1}}} {
		if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("%+v: error = %v, want INVALID_ARGUMENT", bad, err)
		}
	}
}

func sampleResult() *SequenceResult {
	return &SequenceResult{
		MaxN:       2,
		LevelSizes: []int{1, 2},
		Values:     []*big.Int{big.NewInt(1), big.NewInt(1), big.NewInt(3)},
	}
}

func TestEncodeText(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatText, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if want := "0 1\n1 1\n2 3\n"; buf.String() != want {
		t.Errorf("text = %q, want %q", buf.String(), want)
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatCSV, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if want := "n,value\n0,1\n1,1\n2,3\n"; buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatJSON, sampleResult()); err != nil {
		t.Fatal(err)
	}
	var doc SequenceDoc
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	want := SequenceDoc{MaxN: 2, LevelSizes: []int{1, 2}, Values: []string{"1", "1", "3"}}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("doc = %+v, want %+v", doc, want)
	}
}

func TestEncodeInvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, "svg", sampleResult()); err == nil {
		t.Error("Encode(svg) should fail")
	}
	if buf.Len() != 0 {
		t.Error("Encode should not write on invalid format")
	}
}

func TestDecimalStringsLarge(t *testing.T) {
	v, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	got := DecimalStrings([]*big.Int{v})
	if !strings.HasPrefix(got[0], "1234567890123") || len(got[0]) != 30 {
		t.Errorf("DecimalStrings() = %v", got)
	}
}
