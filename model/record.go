package model

// Well-known field names produced by extraction. Templates may define
// additional field names; nothing in the engine restricts the set.
const (
	FieldName       = "name"
	FieldQuantity   = "quantity"
	FieldPrice      = "price"
	FieldValue      = "value"
	FieldPercentage = "percentage"
)

// ValidationStatus is the outcome of the arithmetic cross-check between
// quantity, price and value for one record.
type ValidationStatus int

const (
	// StatusIncomplete means the record is missing at least one of the
	// fields required for the arithmetic check; no check was attempted.
	StatusIncomplete ValidationStatus = iota

	// StatusValidated means the relative error was below 2%.
	StatusValidated

	// StatusAcceptable means the relative error was below 10%.
	StatusAcceptable

	// StatusQuestionable means the relative error was below 30%.
	StatusQuestionable

	// StatusFailed means the fields could not be reconciled even after
	// attempting the percent-of-par price correction.
	StatusFailed
)

func (s ValidationStatus) String() string {
	switch s {
	case StatusValidated:
		return "validated"
	case StatusAcceptable:
		return "acceptable"
	case StatusQuestionable:
		return "questionable"
	case StatusFailed:
		return "validation_failed"
	default:
		return "incomplete"
	}
}

// Field is one extracted field value with its raw source text and a
// confidence score in [0,1].
type Field struct {
	Raw        string
	Value      float64 // parsed numeric value; meaningful only when Numeric
	Numeric    bool
	Confidence float64
}

// Correction records a field rewrite made by cross-validation, keeping
// the original value for downstream review.
type Correction struct {
	Field    string
	Original float64
}

// Record is one extracted security line-item, keyed by its anchor
// identifier. Records are assembled once per anchor and mutated only by
// cross-validation before being returned.
type Record struct {
	AnchorID   string
	Page       int
	Fields     map[string]Field
	Confidence float64
	Status     ValidationStatus
	TemplateID string // empty when extraction was template-free
	Correction *Correction
}

// NewRecord creates an empty record for the given anchor.
func NewRecord(anchorID string, page int) *Record {
	return &Record{
		AnchorID: anchorID,
		Page:     page,
		Fields:   make(map[string]Field),
	}
}

// SetNumber stores a numeric field.
func (r *Record) SetNumber(name, raw string, value, confidence float64) {
	r.Fields[name] = Field{Raw: raw, Value: value, Numeric: true, Confidence: confidence}
}

// SetText stores a text field.
func (r *Record) SetText(name, raw string, confidence float64) {
	r.Fields[name] = Field{Raw: raw, Confidence: confidence}
}

// Number returns the parsed numeric value of a field, if present and numeric.
func (r *Record) Number(name string) (float64, bool) {
	f, ok := r.Fields[name]
	if !ok || !f.Numeric {
		return 0, false
	}
	return f.Value, true
}

// Text returns the raw text of a field, if present.
func (r *Record) Text(name string) (string, bool) {
	f, ok := r.Fields[name]
	if !ok {
		return "", false
	}
	return f.Raw, true
}

// FieldConfidence returns the confidence of a field, or 0 if absent.
func (r *Record) FieldConfidence(name string) float64 {
	return r.Fields[name].Confidence
}
