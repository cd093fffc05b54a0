package rollout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxBranches bounds the branch count accepted by input surfaces.
const MaxBranches = 50

// ErrInvalidBranches is returned for branch counts outside 0..MaxBranches or
// that are not integers.
var ErrInvalidBranches = errors.New("invalid branch count")

// ValidateBranches checks n against the accepted range.
func ValidateBranches(n int) error {
	if n < 0 || n > MaxBranches {
		return fmt.Errorf("%w: %d (allowed 0..%d)", ErrInvalidBranches, n, MaxBranches)
	}
	return nil
}

// ParseBranches parses and validates a branch count from text.
func ParseBranches(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidBranches, s)
	}
	if err := ValidateBranches(n); err != nil {
		return 0, err
	}
	return n, nil
}
