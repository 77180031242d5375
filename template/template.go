package template

import (
	"fmt"

	"github.com/tsawler/fintab/numbers"
)

// DataType declares how a field mapping's raw token text is parsed.
type DataType string

const (
	TypeNumber     DataType = "number"
	TypeText       DataType = "text"
	TypePercentage DataType = "percentage"
	TypeDate       DataType = "date"
)

// FieldMapping maps one semantic field to its expected geometric
// position and parsing rules within a known source layout. Mappings are
// owned by their Template and immutable after creation.
type FieldMapping struct {
	// Field is the semantic field name the mapping extracts.
	Field string `yaml:"field"`

	// XStart and XEnd bound the horizontal range searched for the value.
	XStart float64 `yaml:"x_start"`
	XEnd   float64 `yaml:"x_end"`

	// YOffset is added to the anchor's y-center to find the target band.
	YOffset float64 `yaml:"y_offset"`

	// Type selects the parser for matched tokens.
	Type DataType `yaml:"type"`

	// Pattern optionally restricts matches to a regular expression.
	Pattern string `yaml:"pattern,omitempty"`

	// Min and Max bound accepted numeric values. Both zero means
	// unbounded.
	Min float64 `yaml:"min,omitempty"`
	Max float64 `yaml:"max,omitempty"`

	// Weight is the field's share of overall record confidence.
	Weight float64 `yaml:"weight"`
}

// Bounded reports whether the mapping declares a validation range.
func (m FieldMapping) Bounded() bool {
	return m.Min != 0 || m.Max != 0
}

// InRange checks a parsed value against the mapping's validation range.
func (m FieldMapping) InRange(v float64) bool {
	if !m.Bounded() {
		return true
	}
	return v >= m.Min && v <= m.Max
}

// Template is a stored layout description for one known source format:
// identifier patterns used for matching, field-to-position mappings,
// the declared number locale, and the arithmetic convention its values
// follow. Templates are curated offline and read-only at extraction
// time.
type Template struct {
	// ID is the caller-chosen stable template identifier.
	ID string `yaml:"id"`

	// SourcePatterns are literal strings expected in documents of this
	// layout; the matcher scores by the fraction found.
	SourcePatterns []string `yaml:"source_patterns"`

	// Fields are the column definitions, in layout order.
	Fields []FieldMapping `yaml:"fields"`

	// NumberFormat is the locale family the source prints numbers in.
	NumberFormat numbers.Format `yaml:"number_format"`

	// ValueDivisor is the divisor in the source's arithmetic convention
	// value = quantity * price / divisor. Zero means 1.
	ValueDivisor float64 `yaml:"value_divisor,omitempty"`

	// ValidationRules documents the arithmetic invariants the source
	// declares, for human readers of the template file.
	ValidationRules []string `yaml:"validation_rules,omitempty"`

	// ConfidenceThreshold is the minimum match score at which this
	// template may be selected.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// Divisor returns the template's value divisor, defaulting to 1.
func (t *Template) Divisor() float64 {
	if t.ValueDivisor == 0 {
		return 1
	}
	return t.ValueDivisor
}

// Validate checks the template for structural problems. It is called on
// registry save and load, so malformed curated files fail eagerly.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template: missing id")
	}
	if len(t.Fields) == 0 {
		return fmt.Errorf("template %q: no field mappings", t.ID)
	}
	switch t.NumberFormat {
	case numbers.Swiss, numbers.German, numbers.US:
	default:
		return fmt.Errorf("template %q: unknown number format %q", t.ID, t.NumberFormat)
	}
	for i, m := range t.Fields {
		if m.Field == "" {
			return fmt.Errorf("template %q: field mapping %d has no field name", t.ID, i)
		}
		switch m.Type {
		case TypeNumber, TypeText, TypePercentage, TypeDate:
		default:
			return fmt.Errorf("template %q: field %q has unknown type %q", t.ID, m.Field, m.Type)
		}
		if m.XEnd < m.XStart {
			return fmt.Errorf("template %q: field %q has inverted x range", t.ID, m.Field)
		}
	}
	if t.ConfidenceThreshold < 0 || t.ConfidenceThreshold > 1 {
		return fmt.Errorf("template %q: confidence threshold outside [0,1]", t.ID)
	}
	return nil
}
