// Package vin validates Vehicle Identification Numbers against ISO 3779.
//
// A VIN is accepted when, after trimming and upper-casing, it consists of
// exactly 17 characters from the alphabet A–Z (without I, O and Q) and 0–9,
// and the check digit at position 8 matches the weighted checksum computed
// over the remaining positions.
//
// Validation failures are reported as *ValidationError. Callers distinguish
// the two failure kinds with errors.Is:
//
//	v, err := vin.Validate(raw)
//	switch {
//	case errors.Is(err, vin.ErrFormat):
//	    // wrong length or forbidden characters
//	case errors.Is(err, vin.ErrChecksum):
//	    // check digit mismatch
//	}
package vin
