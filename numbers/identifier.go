package numbers

// Security identifiers follow the ISIN grammar: a two-letter country
// code, nine alphanumeric characters, and a final check digit computed
// with the Luhn algorithm over the digit-expanded string. Tokens that
// match the shape but fail the checksum are anchor candidates that must
// be discarded, not numbers.

const identifierLength = 12

// IsIdentifierShaped reports whether a token has the fixed 12-character
// identifier shape: alphanumeric with a digit in the check position.
// The shape deliberately admits all-digit tokens so that number parsing
// never mistakes a digit-only identifier for a value. Shape alone does
// not imply a valid identifier; see ValidIdentifier.
func IsIdentifierShaped(s string) bool {
	if len(s) != identifierLength {
		return false
	}
	for i := 0; i < identifierLength-1; i++ {
		if !isAlphaNum(s[i]) {
			return false
		}
	}
	return s[11] >= '0' && s[11] <= '9'
}

// ValidIdentifier reports whether a token is a checksummed identifier:
// a two-letter country prefix, nine alphanumerics, and a correct Luhn
// check digit over the digit-expanded string.
func ValidIdentifier(s string) bool {
	if !IsIdentifierShaped(s) {
		return false
	}
	if !isUpperAlpha(s[0]) && !isLowerAlpha(s[0]) {
		return false
	}
	if !isUpperAlpha(s[1]) && !isLowerAlpha(s[1]) {
		return false
	}
	return luhnValid(expandDigits(s))
}

// expandDigits converts each character to its numeric expansion
// (digits map to themselves, A=10 .. Z=35) and concatenates the result.
func expandDigits(s string) []int {
	digits := make([]int, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, int(c-'0'))
		case c >= 'A' && c <= 'Z':
			n := int(c-'A') + 10
			digits = append(digits, n/10, n%10)
		case c >= 'a' && c <= 'z':
			n := int(c-'a') + 10
			digits = append(digits, n/10, n%10)
		}
	}
	return digits
}

// luhnValid checks the Luhn checksum over a digit sequence that already
// includes the check digit as its last element.
func luhnValid(digits []int) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func isUpperAlpha(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLowerAlpha(c byte) bool { return c >= 'a' && c <= 'z' }

func isAlphaNum(c byte) bool {
	return isUpperAlpha(c) || isLowerAlpha(c) || (c >= '0' && c <= '9')
}
