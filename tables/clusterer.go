package tables

import (
	"math"
	"sort"

	"github.com/tsawler/fintab/model"
	"github.com/tsawler/fintab/numbers"
)

// Config holds clusterer configuration
type Config struct {
	// Minimum horizontal gap between x-centers to start a new column (geometry units)
	ColumnGap float64

	// Minimum vertical gap between y-centers to start a new row (geometry units)
	RowGap float64

	// Floor for a row's y-tolerance, absorbing sub-pixel jitter
	MinYTolerance float64

	// Minimum tokens for a usable row (anchor plus two data fields)
	MinRowTokens int

	// Minimum tokens for a usable column
	MinColumnTokens int

	// Maximum sample values retained per column for type inference
	MaxSampleValues int
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		ColumnGap:       30.0,
		RowGap:          8.0,
		MinYTolerance:   5.0,
		MinRowTokens:    3,
		MinColumnTokens: 2,
		MaxSampleValues: 5,
	}
}

// ColumnKind is the semantic type inferred for a column from its
// sample values.
type ColumnKind int

const (
	KindOther ColumnKind = iota
	KindIdentifier
	KindName
	KindQuantity
	KindPrice
	KindValue
	KindPercentage
)

func (k ColumnKind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindName:
		return "name"
	case KindQuantity:
		return "quantity"
	case KindPrice:
		return "price"
	case KindValue:
		return "value"
	case KindPercentage:
		return "percentage"
	default:
		return "other"
	}
}

// Column is a column hypothesis: an x-range with an inferred semantic
// kind and a bounded set of sample values.
type Column struct {
	XStart     float64
	XEnd       float64
	Kind       ColumnKind
	Confidence float64
	Samples    []string
}

// ContainsX reports whether an x-center falls within the column range.
func (c Column) ContainsX(x float64) bool {
	return x >= c.XStart && x <= c.XEnd
}

// Row is a row hypothesis: tokens sharing a y-band, ordered left to
// right, with an anchor identifier when one of the tokens carries one.
type Row struct {
	Page       int
	YCenter    float64
	YTolerance float64
	Tokens     []model.Token
	AnchorID   string
}

// Clusterer reconstructs table structure from token geometry on one
// page. Clustering is deterministic under re-ordering of the input
// token list.
type Clusterer struct {
	config Config
}

// NewClusterer creates a clusterer with default configuration.
func NewClusterer() *Clusterer {
	return &Clusterer{config: DefaultConfig()}
}

// NewClustererWithConfig creates a clusterer with custom configuration.
func NewClustererWithConfig(config Config) *Clusterer {
	return &Clusterer{config: config}
}

// Cluster groups a page's tokens into column and row hypotheses.
// Malformed tokens are excluded; tokens outside every column range stay
// unassigned, which is not an error.
func (c *Clusterer) Cluster(page int, tokens []model.Token) ([]Column, []Row) {
	usable := make([]model.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.IsMalformed() || t.Page != page {
			continue
		}
		usable = append(usable, t)
	}
	if len(usable) == 0 {
		return nil, nil
	}

	columns := c.clusterColumns(usable)
	rows := c.clusterRows(page, usable)

	return columns, rows
}

// clusterColumns performs 1-D gap clustering of x-centers: sorted
// centers start a new cluster whenever the gap to the previous center
// exceeds ColumnGap. Clusters below MinColumnTokens are discarded.
func (c *Clusterer) clusterColumns(tokens []model.Token) []Column {
	sorted := make([]model.Token, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool {
		xi, xj := sorted[i].XCenter(), sorted[j].XCenter()
		if xi != xj {
			return xi < xj
		}
		return sorted[i].Text < sorted[j].Text
	})

	var columns []Column
	group := []model.Token{sorted[0]}

	flush := func() {
		if len(group) >= c.config.MinColumnTokens {
			columns = append(columns, c.buildColumn(group))
		}
	}

	for i := 1; i < len(sorted); i++ {
		if sorted[i].XCenter()-sorted[i-1].XCenter() > c.config.ColumnGap {
			flush()
			group = nil
		}
		group = append(group, sorted[i])
	}
	flush()

	return columns
}

// buildColumn computes a column's x-range, samples and inferred kind.
func (c *Clusterer) buildColumn(tokens []model.Token) Column {
	col := Column{
		XStart: tokens[0].BBox.X0,
		XEnd:   tokens[0].BBox.X1,
	}
	for _, t := range tokens[1:] {
		col.XStart = math.Min(col.XStart, t.BBox.X0)
		col.XEnd = math.Max(col.XEnd, t.BBox.X1)
	}
	for _, t := range tokens {
		if len(col.Samples) >= c.config.MaxSampleValues {
			break
		}
		col.Samples = append(col.Samples, t.Text)
	}
	col.Kind, col.Confidence = inferKind(col.Samples)
	return col
}

// clusterRows performs 1-D gap clustering of y-centers with the tighter
// RowGap threshold. Rows below MinRowTokens are discarded: a row needs
// at least an anchor plus two data fields to be usable.
func (c *Clusterer) clusterRows(page int, tokens []model.Token) []Row {
	sorted := make([]model.Token, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool {
		yi, yj := sorted[i].YCenter(), sorted[j].YCenter()
		if yi != yj {
			return yi > yj // top of page first
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var groups [][]model.Token
	group := []model.Token{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].YCenter()-sorted[i].YCenter() > c.config.RowGap {
			groups = append(groups, group)
			group = nil
		}
		group = append(group, sorted[i])
	}
	groups = append(groups, group)

	var rows []Row
	for _, g := range groups {
		if len(g) < c.config.MinRowTokens {
			continue
		}
		rows = append(rows, c.buildRow(page, g))
	}

	// A row's tolerance must not overlap its neighbours: clamp to half
	// the gap between adjacent row centers.
	for i := range rows {
		if i > 0 {
			half := (rows[i-1].YCenter - rows[i].YCenter) / 2
			if half > 0 && rows[i].YTolerance > half {
				rows[i].YTolerance = half
			}
		}
		if i < len(rows)-1 {
			half := (rows[i].YCenter - rows[i+1].YCenter) / 2
			if half > 0 && rows[i].YTolerance > half {
				rows[i].YTolerance = half
			}
		}
	}

	return rows
}

// buildRow computes a row's center, tolerance and left-to-right token
// order, and records the first valid anchor identifier found in it.
func (c *Clusterer) buildRow(page int, tokens []model.Token) Row {
	centers := make([]float64, len(tokens))
	for i, t := range tokens {
		centers[i] = t.YCenter()
	}

	row := Row{
		Page:       page,
		YCenter:    mean(centers),
		YTolerance: math.Max(stddev(centers), c.config.MinYTolerance),
		Tokens:     make([]model.Token, len(tokens)),
	}
	copy(row.Tokens, tokens)
	sort.Slice(row.Tokens, func(i, j int) bool {
		return row.Tokens[i].BBox.X0 < row.Tokens[j].BBox.X0
	})

	for _, t := range row.Tokens {
		if numbers.ValidIdentifier(t.Text) {
			row.AnchorID = t.Text
			break
		}
	}

	return row
}

// inferKind guesses a column's semantic kind from its sample values and
// returns the fraction of samples supporting the guess as confidence.
func inferKind(samples []string) (ColumnKind, float64) {
	if len(samples) == 0 {
		return KindOther, 0
	}

	counts := make(map[ColumnKind]int)
	for _, s := range samples {
		counts[sampleKind(s)]++
	}

	best, bestN := KindOther, 0
	for _, k := range []ColumnKind{KindIdentifier, KindQuantity, KindPrice, KindValue, KindPercentage, KindName, KindOther} {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best, float64(bestN) / float64(len(samples))
}

// sampleKind classifies a single sample value.
func sampleKind(s string) ColumnKind {
	if numbers.ValidIdentifier(s) {
		return KindIdentifier
	}
	if numbers.IsIdentifierShaped(s) {
		return KindOther
	}

	v, _, err := numbers.ParseAny(s)
	if err != nil {
		if hasLetter(s) {
			return KindName
		}
		return KindOther
	}

	switch {
	case lastByte(s) == '%':
		return KindPercentage
	case v >= 1000 && v == math.Trunc(v):
		return KindQuantity
	case v >= 0.01 && v < 1000 && v != math.Trunc(v):
		return KindPrice
	case v >= 1000:
		return KindValue
	default:
		return KindOther
	}
}

func hasLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}

func lastByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[len(s)-1]
}

// mean computes the arithmetic mean of a slice of float64 values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev computes the population standard deviation of a slice of
// float64 values.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}
