package classify

import (
	"math"
	"strings"

	"github.com/tsawler/fintab/model"
	"github.com/tsawler/fintab/numbers"
)

// Config holds classifier configuration
type Config struct {
	// Value-range membership per field type
	QuantityMin, QuantityMax float64
	PriceMin, PriceMax       float64
	PercentMin, PercentMax   float64
	ValueMin, ValueMax       float64

	// Score factor weights; they sum to 1
	RangeWeight   float64
	KeywordWeight float64
	ShapeWeight   float64

	// Minimum score gating field assignment; below it the field is left
	// unset rather than guessed
	MinScore float64

	// Maximum words assembled into the name field
	MaxNameWords int

	// Field-indicating keywords looked up in the surrounding text window
	Keywords map[string][]string
}

// DefaultConfig returns default configuration. The keyword sets cover
// English and German, matching the three supported number locales.
func DefaultConfig() Config {
	return Config{
		QuantityMin: 1_000,
		QuantityMax: 10_000_000,
		PriceMin:    0.01,
		PriceMax:    1_000,
		PercentMin:  0,
		PercentMax:  100,
		ValueMin:    100,
		ValueMax:    1_000_000_000,

		RangeWeight:   0.4,
		KeywordWeight: 0.3,
		ShapeWeight:   0.3,

		MinScore:     0.2,
		MaxNameWords: 6,

		Keywords: map[string][]string{
			model.FieldQuantity:   {"quantity", "qty", "nominal", "units", "anzahl", "menge", "stück", "stueck"},
			model.FieldPrice:      {"price", "kurs", "preis", "rate"},
			model.FieldValue:      {"value", "amount", "total", "wert", "betrag", "valeur"},
			model.FieldPercentage: {"%", "percent", "prozent", "yield", "zins", "weight"},
		},
	}
}

// Scored is a field candidate: the source token text, its parsed value
// and the classification score that selected it.
type Scored struct {
	Raw   string
	Value float64
	Score float64
}

// Result holds the classified fields of one row.
type Result struct {
	// Fields maps the well-known numeric field names to their selected
	// candidates. Unassigned fields are absent.
	Fields map[string]Scored

	// Name is the security name assembled from the text tokens
	// following the anchor, empty when none were found.
	Name string
}

// NumericFieldCount returns how many numeric fields were classified.
func (r Result) NumericFieldCount() int {
	return len(r.Fields)
}

// classification priority: earlier fields pick their candidates first
var fieldPriority = []string{
	model.FieldQuantity,
	model.FieldPrice,
	model.FieldValue,
	model.FieldPercentage,
}

// Classifier assigns semantic fields to a row's tokens without a
// template, using value-range membership, keyword proximity and shape
// heuristics.
type Classifier struct {
	config Config
}

// NewClassifier creates a classifier with default configuration.
func NewClassifier() *Classifier {
	return &Classifier{config: DefaultConfig()}
}

// NewClassifierWithConfig creates a classifier with custom configuration.
func NewClassifierWithConfig(config Config) *Classifier {
	return &Classifier{config: config}
}

// candidate is a parsed numeric token under consideration.
type candidate struct {
	token  model.Token
	value  float64
	format numbers.Format
}

// Classify classifies a row's tokens relative to its anchor token.
// The context string is the surrounding text window (typically the row
// itself plus a nearby header band) searched for field keywords.
//
// Fields are assigned greedily in priority order - quantity, price,
// value, percentage - each taking the highest-scoring unassigned
// candidate at or above MinScore. No token is assigned twice.
func (c *Classifier) Classify(rowTokens []model.Token, anchor model.Token, context string) Result {
	res := Result{Fields: make(map[string]Scored)}
	window := strings.ToLower(context)

	var cands []candidate
	for _, t := range rowTokens {
		if t.Text == anchor.Text {
			continue
		}
		// Identifier-shaped tokens are excluded from numeric
		// classification even when all-digit.
		if numbers.IsIdentifierShaped(t.Text) {
			continue
		}
		v, f, err := numbers.ParseAny(t.Text)
		if err != nil {
			continue
		}
		cands = append(cands, candidate{token: t, value: v, format: f})
	}

	assigned := make([]bool, len(cands))
	for _, field := range fieldPriority {
		bestIdx, bestScore := -1, 0.0
		for i, cand := range cands {
			if assigned[i] {
				continue
			}
			score := c.score(field, cand, window)
			if score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
		if bestIdx >= 0 && bestScore >= c.config.MinScore {
			assigned[bestIdx] = true
			res.Fields[field] = Scored{
				Raw:   cands[bestIdx].token.Text,
				Value: cands[bestIdx].value,
				Score: bestScore,
			}
		}
	}

	res.Name = c.assembleName(rowTokens, anchor)

	return res
}

// score computes the per-field-type score for one candidate: value-range
// membership, keyword presence in the text window, and type-specific
// shape heuristics, each weighted per config.
func (c *Classifier) score(field string, cand candidate, window string) float64 {
	score := 0.0

	if c.inRange(field, cand.value) {
		score += c.config.RangeWeight
	}
	if c.keywordHit(field, window) {
		score += c.config.KeywordWeight
	}
	score += c.config.ShapeWeight * c.shape(field, cand)

	return score
}

// inRange checks value-range membership for a field type.
func (c *Classifier) inRange(field string, v float64) bool {
	switch field {
	case model.FieldQuantity:
		return v >= c.config.QuantityMin && v <= c.config.QuantityMax
	case model.FieldPrice:
		return v >= c.config.PriceMin && v <= c.config.PriceMax
	case model.FieldValue:
		return v >= c.config.ValueMin && v <= c.config.ValueMax
	case model.FieldPercentage:
		return v >= c.config.PercentMin && v <= c.config.PercentMax
	default:
		return false
	}
}

// keywordHit reports whether any keyword for the field occurs in the
// surrounding text window.
func (c *Classifier) keywordHit(field, window string) bool {
	for _, kw := range c.config.Keywords[field] {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

// shape returns a 0-1 shape score for a candidate under a field type.
// Quantities favor round multiples, prices favor 2-4 decimal places,
// percentages favor an explicit percent sign.
func (c *Classifier) shape(field string, cand candidate) float64 {
	raw := strings.TrimSpace(cand.token.Text)
	decimals := numbers.DecimalPlaces(raw, cand.format)

	switch field {
	case model.FieldQuantity:
		if cand.value != math.Trunc(cand.value) {
			return 0
		}
		switch {
		case math.Mod(cand.value, 1000) == 0:
			return 1.0
		case math.Mod(cand.value, 100) == 0:
			return 0.75
		default:
			return 0.4
		}
	case model.FieldPrice:
		switch {
		case decimals >= 2 && decimals <= 4:
			return 1.0
		case decimals == 1:
			return 0.4
		default:
			return 0
		}
	case model.FieldValue:
		// Values are large and at most cent-precise.
		if decimals > 2 {
			return 0
		}
		if cand.value >= c.config.QuantityMin {
			return 0.6
		}
		return 0.2
	case model.FieldPercentage:
		if strings.HasSuffix(raw, "%") {
			return 1.0
		}
		if decimals > 0 && cand.value <= c.config.PercentMax {
			return 0.3
		}
		return 0
	default:
		return 0
	}
}

// assembleName collects the non-numeric, non-identifier tokens
// immediately following the anchor, left to right, stopping at the
// first numeric token and truncating to MaxNameWords words.
func (c *Classifier) assembleName(rowTokens []model.Token, anchor model.Token) string {
	var words []string

	for _, t := range rowTokens {
		if t.BBox.X0 <= anchor.BBox.X0 {
			continue
		}
		if numbers.IsIdentifierShaped(t.Text) {
			continue
		}
		if _, _, err := numbers.ParseAny(t.Text); err == nil {
			break
		}
		words = append(words, strings.Fields(t.Text)...)
		if len(words) >= c.config.MaxNameWords {
			words = words[:c.config.MaxNameWords]
			break
		}
	}

	return strings.Join(words, " ")
}
