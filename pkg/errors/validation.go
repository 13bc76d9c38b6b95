package errors

import (
	"slices"
	"strconv"
	"strings"
)

// ValidateMaxN rejects a negative upper bound for the block count.
func ValidateMaxN(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidArgument, "max n must be non-negative, got %d", n)
	}
	return nil
}

// ValidateLevelSizes checks that sizes is a non-empty set of positive
// integers and returns it sorted with duplicates removed.
// The input slice is not modified.
func ValidateLevelSizes(sizes []int) ([]int, error) {
	if len(sizes) == 0 {
		return nil, New(ErrCodeInvalidArgument, "level sizes cannot be empty")
	}
	for _, s := range sizes {
		if s <= 0 {
			return nil, New(ErrCodeInvalidArgument, "level sizes must be positive, got %d", s)
		}
	}
	out := slices.Clone(sizes)
	slices.Sort(out)
	return slices.Compact(out), nil
}

// ParseLevelSizes parses a comma-separated list such as "1,2" into level
// sizes and validates the result.
func ParseLevelSizes(s string) ([]int, error) {
	var sizes []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, Wrap(ErrCodeInvalidArgument, err, "invalid level size %q", field)
		}
		sizes = append(sizes, v)
	}
	return ValidateLevelSizes(sizes)
}
