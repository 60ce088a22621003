package vin

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Length is the number of characters in a VIN.
const Length = 17

// checkDigitPos is the zero-based position of the check digit.
const checkDigitPos = 8

var (
	ErrFormat   = errors.New("invalid VIN format")
	ErrChecksum = errors.New("invalid VIN checksum")
)

var pattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

var weights = [Length]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

var transliteration = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
}

// ValidationError describes why a candidate string is not a valid VIN.
type ValidationError struct {
	Input  string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %q", e.Reason, e.Input)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// Normalize trims surrounding whitespace and upper-cases s.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Validate normalizes raw and checks it. On success the normalized VIN is
// returned.
func Validate(raw string) (string, error) {
	v := Normalize(raw)

	if !pattern.MatchString(v) {
		return "", &ValidationError{Input: v, Reason: ErrFormat}
	}

	sum, err := Checksum(v)
	if err != nil {
		return "", err
	}

	c := v[checkDigitPos]
	if c < '0' || c > '9' || int(c-'0') != sum {
		return "", &ValidationError{Input: v, Reason: ErrChecksum}
	}

	return v, nil
}

// Checksum computes the expected check digit of a normalized VIN. A remainder
// of 10 is reported as 0.
func Checksum(v string) (int, error) {
	if !pattern.MatchString(v) {
		return 0, &ValidationError{Input: v, Reason: ErrFormat}
	}

	sum := 0
	for i := 0; i < Length; i++ {
		sum += value(v[i]) * weights[i]
	}

	rem := sum % 11
	if rem == 10 {
		return 0, nil
	}
	return rem, nil
}

func value(c byte) int {
	if c >= '0' && c <= '9' {
		return int(c - '0')
	}
	return transliteration[c]
}
