// Package numbers provides locale-aware parsing and formatting of the
// numeric notations found on European and US security statements, plus
// the identifier grammar used to recognize anchor tokens.
//
// Three locale families are supported:
//
//   - [Swiss]: apostrophe thousands separator, period decimal (1'234'567.89)
//   - [German]: period thousands separator, comma decimal (1.234.567,89)
//   - [US]: comma thousands separator, period decimal (1,234,567.89)
//
// Parsing rejects identifier-shaped tokens (see [IsIdentifierShaped])
// even when they consist only of digits, so that security identifiers
// are never misread as values.
package numbers

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Format identifies a locale number format family.
type Format string

const (
	Swiss  Format = "swiss"
	German Format = "german"
	US     Format = "us"
)

// ErrNotANumber is returned when a token cannot be parsed under the
// requested format, including identifier-shaped tokens.
var ErrNotANumber = errors.New("numbers: not a number")

// ParseFormat converts a format name to a Format, defaulting to US for
// unknown names.
func ParseFormat(name string) Format {
	switch Format(strings.ToLower(name)) {
	case Swiss:
		return Swiss
	case German:
		return German
	default:
		return US
	}
}

// separators returns the thousands and decimal separators for a format.
func (f Format) separators() (group, decimal byte) {
	switch f {
	case Swiss:
		return '\'', '.'
	case German:
		return '.', ','
	default:
		return ',', '.'
	}
}

// printer returns the x/text printer whose locale produces this
// format's separators.
func (f Format) printer() *message.Printer {
	switch f {
	case German:
		return message.NewPrinter(language.MustParse("de-DE"))
	default:
		// Swiss output is derived from en-US below: CLDR de-CH groups
		// with U+2019, while statements use the ASCII apostrophe.
		return message.NewPrinter(language.MustParse("en-US"))
	}
}

// Parse parses a token as a number under the given format. It returns
// ErrNotANumber for tokens that are not plausible numbers under that
// format, and for identifier-shaped tokens regardless of content.
func Parse(s string, f Format) (float64, error) {
	s = normalize(s)
	if s == "" {
		return 0, ErrNotANumber
	}
	if IsIdentifierShaped(s) {
		return 0, ErrNotANumber
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" {
		return 0, ErrNotANumber
	}

	group, decimal := f.separators()

	intPart := s
	fracPart := ""
	if i := strings.LastIndexByte(s, decimal); i >= 0 {
		// The decimal separator may appear at most once.
		if strings.IndexByte(s, decimal) != i {
			return 0, ErrNotANumber
		}
		intPart, fracPart = s[:i], s[i+1:]
	}

	if !validGrouping(intPart, group) {
		return 0, ErrNotANumber
	}
	if fracPart != "" && !allDigits(fracPart) {
		return 0, ErrNotANumber
	}
	digits := strings.ReplaceAll(intPart, string(group), "")
	if digits == "" && fracPart == "" {
		return 0, ErrNotANumber
	}
	if digits == "" {
		digits = "0"
	}

	v, err := strconv.ParseFloat(digits+"."+zeroIfEmpty(fracPart), 64)
	if err != nil {
		return 0, ErrNotANumber
	}
	if neg {
		v = -v
	}
	return v, nil
}

// ParseAny parses a token by guessing its format from separator usage.
// It returns the parsed value and the format that matched.
func ParseAny(s string) (float64, Format, error) {
	for _, f := range guessFormats(s) {
		if v, err := Parse(s, f); err == nil {
			return v, f, nil
		}
	}
	return 0, US, ErrNotANumber
}

// guessFormats orders the candidate formats for a token by separator
// evidence, most specific first.
func guessFormats(s string) []Format {
	s = normalize(s)
	switch {
	case strings.ContainsRune(s, '\''):
		return []Format{Swiss}
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		// The later separator is the decimal one.
		if strings.LastIndexByte(s, ',') > strings.LastIndexByte(s, '.') {
			return []Format{German, US}
		}
		return []Format{US, German}
	case strings.Count(s, ".") > 1:
		return []Format{German, US}
	case strings.Count(s, ",") > 1:
		return []Format{US, German}
	case strings.Contains(s, ","):
		// A single comma not grouping exactly three digits must be a
		// decimal separator.
		if i := strings.IndexByte(s, ','); len(s)-i-1 != 3 {
			return []Format{German, US}
		}
		return []Format{US, German}
	default:
		return []Format{US, German, Swiss}
	}
}

// MatchesFormat reports whether a token parses under the given format.
// Plain unseparated numbers match every format.
func MatchesFormat(s string, f Format) bool {
	_, err := Parse(s, f)
	return err == nil
}

// DetectFormat votes across a document's numeric tokens and returns the
// dominant format. Tokens that match every format (no separators) carry
// no vote. Returns US when nothing is decisive.
func DetectFormat(tokens []string) Format {
	votes := map[Format]int{}
	for _, s := range tokens {
		sw := MatchesFormat(s, Swiss)
		de := MatchesFormat(s, German)
		us := MatchesFormat(s, US)
		// Only tokens that discriminate between formats count.
		if sw && !de && !us {
			votes[Swiss]++
		}
		if de && !sw && !us {
			votes[German]++
		}
		if us && !sw && !de {
			votes[US]++
		}
		if sw && strings.Contains(normalize(s), "'") {
			votes[Swiss]++
		}
	}
	best, bestN := US, 0
	for _, f := range []Format{Swiss, German, US} {
		if votes[f] > bestN {
			best, bestN = f, votes[f]
		}
	}
	return best
}

// FormatValue renders a value in the given format, preserving up to six
// decimal places of the parsed precision.
func FormatValue(v float64, f Format) string {
	p := f.printer()
	out := p.Sprintf("%v", number.Decimal(v,
		number.MaxFractionDigits(6),
		number.MinFractionDigits(0)))
	if f == Swiss {
		out = strings.ReplaceAll(out, ",", "'")
	}
	return out
}

// DecimalPlaces returns the number of digits after the decimal
// separator of a token under the given format, or 0 when the token has
// no decimal part.
func DecimalPlaces(s string, f Format) int {
	s = normalize(s)
	_, decimal := f.separators()
	i := strings.LastIndexByte(s, decimal)
	if i < 0 {
		return 0
	}
	frac := s[i+1:]
	if !allDigits(frac) {
		return 0
	}
	return len(frac)
}

// normalize strips surrounding whitespace and a trailing percent sign,
// which classifiers handle separately.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	return strings.TrimSpace(s)
}

// validGrouping checks that an integer part uses the group separator
// correctly: either no separator at all, or an initial group of 1-3
// digits followed by groups of exactly 3.
func validGrouping(s string, group byte) bool {
	if s == "" {
		return true
	}
	parts := strings.Split(s, string(group))
	if len(parts) == 1 {
		return allDigits(s)
	}
	if len(parts[0]) < 1 || len(parts[0]) > 3 || !allDigits(parts[0]) {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 || !allDigits(p) {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
