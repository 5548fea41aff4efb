// Package cpf validates Brazilian CPF tax identifiers.
package cpf

import (
	"errors"
	"strings"
)

// ErrInvalid is returned when a value is not a well-formed CPF.
var ErrInvalid = errors.New("invalid cpf")

// Normalize strips formatting punctuation from raw, validates the
// checksum, and returns the bare 11-digit form.
func Normalize(raw string) (string, error) {
	digits := strip(raw)

	if len(digits) != 11 {
		return "", ErrInvalid
	}

	// All-equal sequences (000..., 111..., etc.) pass the checksum but
	// are reserved and never issued.
	if allSame(digits) {
		return "", ErrInvalid
	}

	if digits[9] != checkDigit(digits[:9], 10) || digits[10] != checkDigit(digits[:10], 11) {
		return "", ErrInvalid
	}

	return digits, nil
}

// Valid reports whether raw is a well-formed CPF in either punctuated
// (000.000.000-00) or bare form.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// strip removes the separators of the punctuated form. Any other
// non-digit character is kept so length validation rejects it.
func strip(raw string) string {
	replacer := strings.NewReplacer(".", "", "-", "", " ", "")
	return replacer.Replace(raw)
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// checkDigit computes a verifier digit over digits with descending
// weights starting at firstWeight.
func checkDigit(digits string, firstWeight int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := digits[i]
		if d < '0' || d > '9' {
			return 0xFF
		}
		sum += int(d-'0') * (firstWeight - i)
	}

	d := 11 - sum%11
	if d >= 10 {
		d = 0
	}

	return byte('0' + d)
}
