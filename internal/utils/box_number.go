package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ==========================================
// BOX NUMBER
// Format: BOX NNNNN (5 ASCII digits, zero padded)
// Example: BOX00042
// ==========================================

const (
	BoxNumberPrefix = "BOX"
	BoxNumberDigits = 5
	BoxNumberLength = len(BoxNumberPrefix) + BoxNumberDigits
	MaxBoxNumber    = 99999
)

var ErrInvalidBoxNumber = errors.New("invalid box number")

// FormatBoxNumber renders n as a box number, e.g. 42 -> BOX00042
func FormatBoxNumber(n int) (string, error) {
	if n < 0 || n > MaxBoxNumber {
		return "", fmt.Errorf("%w: %d out of range 0..%d", ErrInvalidBoxNumber, n, MaxBoxNumber)
	}
	return fmt.Sprintf("%s%0*d", BoxNumberPrefix, BoxNumberDigits, n), nil
}

// ValidateBoxNumber accepts exactly "BOX" followed by five ASCII digits.
// No case folding or trimming happens here; see NormalizeBoxNumber.
func ValidateBoxNumber(s string) bool {
	if len(s) != BoxNumberLength || !strings.HasPrefix(s, BoxNumberPrefix) {
		return false
	}
	for i := len(BoxNumberPrefix); i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizeBoxNumber trims and upper-cases a scanned or typed box number
// before validating it
func NormalizeBoxNumber(s string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if !ValidateBoxNumber(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBoxNumber, s)
	}
	return normalized, nil
}

// ParseBoxNumber returns the numeric part of a valid box number
func ParseBoxNumber(s string) (int, error) {
	if !ValidateBoxNumber(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBoxNumber, s)
	}
	return strconv.Atoi(s[len(BoxNumberPrefix):])
}
