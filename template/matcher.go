package template

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tsawler/fintab/numbers"
)

// DocumentProfile summarizes the text and geometry evidence the matcher
// scores templates against.
type DocumentProfile struct {
	// Text is the full document text, used for source pattern matching.
	Text string

	// ColumnCounts holds the number of distinct geometric columns
	// detected on each page.
	ColumnCounts []int

	// NumericTokens are the document's number-like token texts, used
	// for locale format consistency scoring.
	NumericTokens []string
}

// MatcherConfig holds the score factor weights.
type MatcherConfig struct {
	// PatternWeight scores the fraction of source patterns found.
	PatternWeight float64

	// StructureWeight scores detected versus expected column counts.
	StructureWeight float64

	// FormatWeight scores number-locale consistency.
	FormatWeight float64

	// IgnoreThresholds accepts the best-scoring template even below its
	// own confidence threshold (aggressive mode).
	IgnoreThresholds bool
}

// DefaultMatcherConfig returns the default factor weights.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		PatternWeight:   0.4,
		StructureWeight: 0.3,
		FormatWeight:    0.3,
	}
}

// Matcher scores registered templates against a document and selects
// the best match. It is a best-effort classifier: declining to select
// (returning nil) is expected behavior that callers degrade from
// gracefully, never an error.
type Matcher struct {
	config MatcherConfig
}

// NewMatcher creates a matcher with default configuration.
func NewMatcher() *Matcher {
	return &Matcher{config: DefaultMatcherConfig()}
}

// NewMatcherWithConfig creates a matcher with custom configuration.
func NewMatcherWithConfig(config MatcherConfig) *Matcher {
	return &Matcher{config: config}
}

// Select returns the highest-scoring template whose score meets its own
// confidence threshold, with the score, or (nil, bestScore) when no
// template qualifies. Ties are broken by registry insertion order: the
// earlier template wins.
func (m *Matcher) Select(reg *Registry, profile DocumentProfile) (*Template, float64) {
	if reg == nil || reg.Len() == 0 {
		return nil, 0
	}

	var best *Template
	bestScore := 0.0

	for _, t := range reg.All() {
		// Strict comparison: on a tie the earlier-registered template
		// stays selected.
		score := m.Score(t, profile)
		if score > bestScore {
			best, bestScore = t, score
		}
	}

	if best == nil {
		return nil, 0
	}
	if !m.config.IgnoreThresholds && bestScore < best.ConfidenceThreshold {
		log.Debug().
			Str("template", best.ID).
			Float64("score", bestScore).
			Float64("threshold", best.ConfidenceThreshold).
			Msg("best template below threshold, falling back to template-free extraction")
		return nil, bestScore
	}
	return best, bestScore
}

// Score computes the weighted match score of one template against the
// document profile.
func (m *Matcher) Score(t *Template, profile DocumentProfile) float64 {
	score := m.config.PatternWeight * patternScore(t, profile.Text)
	score += m.config.StructureWeight * structureScore(t, profile.ColumnCounts)
	score += m.config.FormatWeight * formatScore(t, profile.NumericTokens)
	return score
}

// patternScore is the fraction of the template's source identifier
// patterns found in the document text (case-insensitive).
func patternScore(t *Template, text string) float64 {
	if len(t.SourcePatterns) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	found := 0
	for _, p := range t.SourcePatterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			found++
		}
	}
	return float64(found) / float64(len(t.SourcePatterns))
}

// structureScore compares the best detected column count against the
// template's expected column count, degrading linearly with the
// relative difference.
func structureScore(t *Template, columnCounts []int) float64 {
	expected := len(t.Fields)
	if expected == 0 || len(columnCounts) == 0 {
		return 0
	}

	// Use the page closest to the expected structure: line-item pages
	// dominate statements, but cover pages may detect few columns.
	bestDiff := -1
	for _, n := range columnCounts {
		diff := n - expected
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
		}
	}

	score := 1.0 - float64(bestDiff)/float64(expected)
	if score < 0 {
		return 0
	}
	return score
}

// formatScore is the fraction of numeric tokens consistent with the
// template's declared number locale.
func formatScore(t *Template, numericTokens []string) float64 {
	if len(numericTokens) == 0 {
		return 0
	}
	matched := 0
	for _, s := range numericTokens {
		if numbers.MatchesFormat(s, t.NumberFormat) {
			matched++
		}
	}
	return float64(matched) / float64(len(numericTokens))
}
