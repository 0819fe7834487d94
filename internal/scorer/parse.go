package scorer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseReply extracts the score from a model reply. A range such as
// "10.0-15.0" yields its lower bound. A leading minus sign and the sign of
// an exponent are not treated as range separators.
func ParseReply(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: empty reply", ErrUnparsableReply)
	}

	numeric := text
	if i := rangeSeparator(text); i >= 0 {
		numeric = strings.TrimSpace(text[:i])
	}

	v, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrUnparsableReply, numeric)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", ErrUnparsableReply, numeric)
	}
	return v, nil
}

// rangeSeparator returns the index of the first '-' that separates two
// numbers, or -1.
func rangeSeparator(text string) int {
	for i := 1; i < len(text); i++ {
		if text[i] != '-' {
			continue
		}
		if prev := text[i-1]; prev == 'e' || prev == 'E' {
			continue
		}
		return i
	}
	return -1
}
