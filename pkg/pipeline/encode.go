package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
)

// SequenceDoc is the wire form of a sequence. Values are decimal strings
// because they exceed the integer range of most JSON consumers.
type SequenceDoc struct {
	MaxN       int      `json:"max_n"`
	LevelSizes []int    `json:"level_sizes"`
	Values     []string `json:"values"`
}

// Doc converts the result to its wire form.
func (r *SequenceResult) Doc() SequenceDoc {
	return SequenceDoc{
		MaxN:       r.MaxN,
		LevelSizes: r.LevelSizes,
		Values:     DecimalStrings(r.Values),
	}
}

// DecimalStrings formats each value in base 10.
func DecimalStrings(values []*big.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

// Encode writes res to w in the given format:
//   - text: one "n value" pair per line
//   - json: a SequenceDoc
//   - csv: a header row "n,value" followed by one row per n
func Encode(w io.Writer, format string, res *SequenceResult) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Doc())
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"n", "value"}); err != nil {
			return err
		}
		for n, v := range res.Values {
			if err := cw.Write([]string{strconv.Itoa(n), v.String()}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		for n, v := range res.Values {
			if _, err := fmt.Fprintf(w, "%d %s\n", n, v); err != nil {
				return err
			}
		}
		return nil
	}
}
