// Package rut validates and normalizes Chilean RUT identifiers, the
// national-ID strings used as natural keys for people across the system.
package rut

import (
	"regexp"
	"strings"
)

// formatPattern accepts 7 or 8 digits, a dash, and a verifier digit or k/K.
var formatPattern = regexp.MustCompile(`^\d{7,8}-[0-9kK]$`)

// ValidFormat reports whether raw, after trimming whitespace, matches the
// XXXXXXX-X / XXXXXXXX-X form. It does not verify the checksum.
func ValidFormat(raw string) bool {
	return formatPattern.MatchString(strings.TrimSpace(raw))
}

// Normalize trims and canonicalizes a RUT into digits+dash+uppercase
// verifier. Punctuated input (12.345.678-9) and bare input (123456789)
// normalize to the same value. The second return is false when the input
// is not a well-formed RUT; callers must reject it as a validation error.
func Normalize(raw string) (string, bool) {
	cleaned := Clean(raw)
	if len(cleaned) < 8 || len(cleaned) > 9 {
		return "", false
	}
	digits, verifier := cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1:]
	normalized := digits + "-" + verifier
	if !formatPattern.MatchString(normalized) {
		return "", false
	}
	return strings.ToUpper(normalized), true
}

// Clean strips dots, dashes and surrounding whitespace and uppercases the
// verifier, leaving only digits plus the verifier character.
func Clean(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	return strings.ToUpper(cleaned)
}

// Checksum computes the verifier character for a run of 7 or 8 digits
// using the weighted mod-11 algorithm: weights cycle 2,3,4,5,6,7 from the
// rightmost digit; 11 maps to '0' and 10 maps to 'K'.
func Checksum(digits string) (byte, bool) {
	if len(digits) < 7 || len(digits) > 8 {
		return 0, false
	}
	sum := 0
	weight := 2
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		sum += int(c-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch verifier := 11 - sum%11; verifier {
	case 11:
		return '0', true
	case 10:
		return 'K', true
	default:
		return byte('0' + verifier), true
	}
}

// Valid reports whether the full RUT (in any accepted textual variant)
// carries the correct verifier for its digit run. The comparison is
// case-insensitive on 'k'.
func Valid(full string) bool {
	cleaned := Clean(full)
	if len(cleaned) < 8 || len(cleaned) > 9 {
		return false
	}
	digits, verifier := cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1]
	want, ok := Checksum(digits)
	if !ok {
		return false
	}
	return verifier == want
}

// Format renders a normalized RUT with thousand separators, e.g.
// 12345678-9 becomes 12.345.678-9. Malformed input is returned cleaned.
func Format(raw string) string {
	cleaned := Clean(raw)
	if len(cleaned) < 8 {
		return cleaned
	}
	digits, verifier := cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1:]
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String() + "-" + verifier
}
