package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tsawler/fintab/classify"
	"github.com/tsawler/fintab/model"
	"github.com/tsawler/fintab/numbers"
	"github.com/tsawler/fintab/spatial"
	"github.com/tsawler/fintab/tables"
	"github.com/tsawler/fintab/template"
	"github.com/tsawler/fintab/validate"
)

// Config consolidates the tunable constants of the whole pipeline into
// one explicit structure passed into each component.
type Config struct {
	Cluster  tables.Config
	Classify classify.Config
	Validate validate.Config

	// TemplateBandTolerance is the y-tolerance for template-guided
	// field queries. Template coordinates are assumed precise, so this
	// is tighter than template-free row tolerances.
	TemplateBandTolerance float64

	// TemplateFieldConfidence is the per-field confidence assigned on
	// the template path.
	TemplateFieldConfidence float64

	// KeywordRadius bounds the text window around an anchor searched
	// for field-indicating keywords on the classifier path.
	KeywordRadius float64

	// MissingFieldPenalty is subtracted from overall confidence for
	// each missing required field (quantity, price, value).
	MissingFieldPenalty float64
}

// DefaultConfig returns default configuration for all components.
func DefaultConfig() Config {
	return Config{
		Cluster:                 tables.DefaultConfig(),
		Classify:                classify.DefaultConfig(),
		Validate:                validate.DefaultConfig(),
		TemplateBandTolerance:   3.0,
		TemplateFieldConfidence: 0.95,
		KeywordRadius:           150.0,
		MissingFieldPenalty:     0.15,
	}
}

// requiredFields take part in the arithmetic cross-check; records
// missing them are penalized and end up incomplete.
var requiredFields = []string{model.FieldQuantity, model.FieldPrice, model.FieldValue}

// pageStructure caches one page's clustering output.
type pageStructure struct {
	columns []tables.Column
	rows    []tables.Row
}

// Assembler orchestrates extraction: anchor discovery, row clustering,
// template-guided or classifier-based field extraction, and arithmetic
// validation. One record is produced per valid anchor, always.
type Assembler struct {
	config     Config
	ix         *spatial.Index
	clusterer  *tables.Clusterer
	classifier *classify.Classifier
	validator  *validate.CrossValidator

	structures map[int]*pageStructure
	patterns   map[string]*regexp.Regexp
}

// NewAssembler creates an assembler over an indexed document.
func NewAssembler(ix *spatial.Index, config Config) *Assembler {
	return &Assembler{
		config:     config,
		ix:         ix,
		clusterer:  tables.NewClustererWithConfig(config.Cluster),
		classifier: classify.NewClassifierWithConfig(config.Classify),
		validator:  validate.NewCrossValidatorWithConfig(config.Validate),
		structures: make(map[int]*pageStructure),
		patterns:   make(map[string]*regexp.Regexp),
	}
}

// structure returns the cached clustering output for a page.
func (a *Assembler) structure(page int) *pageStructure {
	if s, ok := a.structures[page]; ok {
		return s
	}
	columns, rows := a.clusterer.Cluster(page, a.ix.PageTokens(page))
	s := &pageStructure{columns: columns, rows: rows}
	a.structures[page] = s
	return s
}

// Profile summarizes the document for template matching: full text,
// detected column counts per page, and the numeric token texts.
func (a *Assembler) Profile() template.DocumentProfile {
	profile := template.DocumentProfile{Text: a.ix.DocumentText()}

	for _, page := range a.ix.Pages() {
		s := a.structure(page)
		profile.ColumnCounts = append(profile.ColumnCounts, len(s.columns))
		for _, t := range a.ix.PageTokens(page) {
			if numbers.IsIdentifierShaped(t.Text) {
				continue
			}
			if _, _, err := numbers.ParseAny(t.Text); err == nil {
				profile.NumericTokens = append(profile.NumericTokens, t.Text)
			}
		}
	}
	return profile
}

// Run extracts one record per anchor, using the given template when
// non-nil and the contextual classifier otherwise, then cross-validates
// every record. Records are returned in global anchor order.
func (a *Assembler) Run(tpl *template.Template) []*model.Record {
	anchors := FindAnchors(a.ix)

	divisor := 1.0
	if tpl != nil {
		divisor = tpl.Divisor()
	}

	records := make([]*model.Record, 0, len(anchors))
	for _, anchor := range anchors {
		var rec *model.Record
		if tpl != nil {
			rec = a.assembleWithTemplate(anchor, tpl)
		} else {
			rec = a.assembleWithClassifier(anchor)
		}
		a.validator.Validate(rec, divisor)
		records = append(records, rec)
	}
	return records
}

// assembleWithTemplate extracts fields at the template's declared
// positions relative to the anchor.
func (a *Assembler) assembleWithTemplate(anchor Anchor, tpl *template.Template) *model.Record {
	rec := model.NewRecord(anchor.ID, anchor.Token.Page)
	rec.TemplateID = tpl.ID

	for _, m := range tpl.Fields {
		y := anchor.Token.YCenter() + m.YOffset
		band := a.ix.TokensInBand(anchor.Token.Page, y, a.config.TemplateBandTolerance)

		var inRange []model.Token
		for _, t := range band {
			x := t.XCenter()
			if x < m.XStart || x > m.XEnd {
				continue
			}
			if t.Text == anchor.ID {
				continue
			}
			inRange = append(inRange, t)
		}
		a.extractMappedField(rec, m, tpl, inRange)
	}

	rec.Confidence = a.templateConfidence(rec, tpl)
	return rec
}

// extractMappedField parses a mapping's candidate tokens and stores the
// first value that passes the mapping's pattern and validation range.
func (a *Assembler) extractMappedField(rec *model.Record, m template.FieldMapping, tpl *template.Template, cands []model.Token) {
	conf := a.config.TemplateFieldConfidence

	switch m.Type {
	case template.TypeNumber, template.TypePercentage:
		for _, t := range cands {
			if !a.patternMatches(m.Pattern, t.Text) {
				continue
			}
			v, err := numbers.Parse(t.Text, tpl.NumberFormat)
			if err != nil {
				continue
			}
			if !m.InRange(v) {
				continue
			}
			rec.SetNumber(m.Field, t.Text, v, conf)
			return
		}
	case template.TypeDate:
		for _, t := range cands {
			if !a.patternMatches(m.Pattern, t.Text) {
				continue
			}
			if parsesAsDate(t.Text) {
				rec.SetText(m.Field, t.Text, conf)
				return
			}
		}
	default: // text
		var parts []string
		for _, t := range cands {
			if !a.patternMatches(m.Pattern, t.Text) {
				continue
			}
			parts = append(parts, t.Text)
		}
		if len(parts) > 0 {
			rec.SetText(m.Field, strings.Join(parts, " "), conf)
		}
	}
}

// templateConfidence computes the weighted mean of per-field
// confidences over every declared mapping; missing fields contribute
// zero, so incompletely matched templates score low.
func (a *Assembler) templateConfidence(rec *model.Record, tpl *template.Template) float64 {
	totalWeight := 0.0
	score := 0.0
	for _, m := range tpl.Fields {
		w := m.Weight
		if w == 0 {
			w = 1
		}
		totalWeight += w
		if f, ok := rec.Fields[m.Field]; ok {
			score += w * f.Confidence
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return clamp01(score / totalWeight)
}

// assembleWithClassifier extracts fields from the anchor's row using
// the contextual classifier.
func (a *Assembler) assembleWithClassifier(anchor Anchor) *model.Record {
	rec := model.NewRecord(anchor.ID, anchor.Token.Page)

	rowTokens := a.anchorRow(anchor)
	context := a.keywordContext(anchor, rowTokens)

	res := a.classifier.Classify(rowTokens, anchor.Token, context)
	for field, s := range res.Fields {
		rec.SetNumber(field, s.Raw, s.Value, s.Score)
	}
	if res.Name != "" {
		rec.SetText(model.FieldName, res.Name, 0.7)
	}
	if res.NumericFieldCount() < 2 {
		log.Debug().
			Str("anchor", anchor.ID).
			Int("fields", res.NumericFieldCount()).
			Msg("row classified with fewer than two numeric fields")
	}

	rec.Confidence = a.classifierConfidence(rec)
	return rec
}

// anchorRow returns the clustered row containing the anchor token, or a
// band query around the anchor when its row was discarded as too small.
func (a *Assembler) anchorRow(anchor Anchor) []model.Token {
	s := a.structure(anchor.Token.Page)
	y := anchor.Token.YCenter()

	for _, row := range s.rows {
		d := row.YCenter - y
		if d < -row.YTolerance || d > row.YTolerance {
			continue
		}
		for _, t := range row.Tokens {
			if t.Text == anchor.ID && t.BBox == anchor.Token.BBox {
				return row.Tokens
			}
		}
	}

	tol := a.config.Cluster.RowGap
	if a.config.Cluster.MinYTolerance > tol {
		tol = a.config.Cluster.MinYTolerance
	}
	return a.ix.TokensInBand(anchor.Token.Page, y, tol)
}

// keywordContext assembles the text window searched for field keywords:
// the row itself plus everything within the keyword radius of the
// anchor, which typically pulls in the column header line.
func (a *Assembler) keywordContext(anchor Anchor, rowTokens []model.Token) string {
	var sb strings.Builder
	for _, t := range rowTokens {
		sb.WriteString(t.Text)
		sb.WriteByte(' ')
	}
	near := a.ix.TokensNear(anchor.Token.Page, anchor.Token.XCenter(), anchor.Token.YCenter(), a.config.KeywordRadius, false)
	for _, t := range near {
		sb.WriteString(t.Text)
		sb.WriteByte(' ')
	}
	return sb.String()
}

// classifierConfidence averages the classified field scores and
// penalizes each missing required field.
func (a *Assembler) classifierConfidence(rec *model.Record) float64 {
	sum := 0.0
	n := 0
	for _, f := range rec.Fields {
		sum += f.Confidence
		n++
	}
	conf := 0.0
	if n > 0 {
		conf = sum / float64(n)
	}
	for _, field := range requiredFields {
		if _, ok := rec.Number(field); !ok {
			conf -= a.config.MissingFieldPenalty
		}
	}
	return clamp01(conf)
}

// patternMatches checks a mapping's optional regular expression; an
// empty pattern matches everything, an invalid one matches nothing.
func (a *Assembler) patternMatches(pattern, text string) bool {
	if pattern == "" {
		return true
	}
	re, ok := a.patterns[pattern]
	if !ok {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			log.Debug().Str("pattern", pattern).Err(err).Msg("invalid field mapping pattern")
			re = nil
		}
		a.patterns[pattern] = re
	}
	if re == nil {
		return false
	}
	return re.MatchString(text)
}

// dateLayouts accepted for TypeDate mappings.
var dateLayouts = []string{
	"02.01.2006",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

// parsesAsDate reports whether a token parses under any accepted date
// layout.
func parsesAsDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
