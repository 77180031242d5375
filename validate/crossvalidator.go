// Package validate cross-checks extracted records against the
// arithmetic invariant quantity x price / divisor = value, correcting
// or flagging records that fail it. Records are always returned to the
// caller regardless of outcome; the status field carries the verdict.
package validate

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/tsawler/fintab/model"
)

// Config holds the relative-error thresholds of the decision table.
type Config struct {
	// ValidatedMax is the error below which a record is validated.
	ValidatedMax float64

	// AcceptableMax is the error below which a record is acceptable.
	AcceptableMax float64

	// QuestionableMax is the error below which a record is questionable;
	// at or above it the price correction is attempted.
	QuestionableMax float64
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		ValidatedMax:    0.02,
		AcceptableMax:   0.10,
		QuestionableMax: 0.30,
	}
}

// CrossValidator applies the arithmetic cross-check to assembled
// records. Validation is the only mutation records see after assembly,
// and it is idempotent: validating twice yields the same fields and
// status.
type CrossValidator struct {
	config Config
}

// NewCrossValidator creates a validator with default thresholds.
func NewCrossValidator() *CrossValidator {
	return &CrossValidator{config: DefaultConfig()}
}

// NewCrossValidatorWithConfig creates a validator with custom thresholds.
func NewCrossValidatorWithConfig(config Config) *CrossValidator {
	return &CrossValidator{config: config}
}

// Validate checks quantity x price / divisor against value and sets the
// record's status. A divisor of 0 is treated as 1. When the raw check
// fails outright, the price is reinterpreted as a percentage of par
// (price / 100) and rechecked; a successful correction overwrites the
// price and records the original value on the record.
func (v *CrossValidator) Validate(rec *model.Record, divisor float64) {
	if rec == nil {
		return
	}
	if divisor == 0 {
		divisor = 1
	}

	quantity, okQ := rec.Number(model.FieldQuantity)
	price, okP := rec.Number(model.FieldPrice)
	value, okV := rec.Number(model.FieldValue)
	if !okQ || !okP || !okV {
		rec.Status = model.StatusIncomplete
		return
	}

	err := relativeError(quantity*price/divisor, value)
	if err < v.config.QuestionableMax {
		rec.Status = v.statusFor(err)
		return
	}

	// Raw check failed: the price may be quoted as a percentage of par.
	corrected := price / 100
	correctedErr := relativeError(quantity*corrected/divisor, value)
	if correctedErr < v.config.AcceptableMax {
		priceField := rec.Fields[model.FieldPrice]
		rec.SetNumber(model.FieldPrice, priceField.Raw, corrected, priceField.Confidence)
		rec.Correction = &model.Correction{Field: model.FieldPrice, Original: price}
		rec.Status = v.statusFor(correctedErr)
		log.Debug().
			Str("anchor", rec.AnchorID).
			Float64("original", price).
			Float64("corrected", corrected).
			Msg("price reinterpreted as percentage of par")
		return
	}

	rec.Status = model.StatusFailed
}

// statusFor maps a relative error below QuestionableMax to its status.
func (v *CrossValidator) statusFor(err float64) model.ValidationStatus {
	switch {
	case err < v.config.ValidatedMax:
		return model.StatusValidated
	case err < v.config.AcceptableMax:
		return model.StatusAcceptable
	default:
		return model.StatusQuestionable
	}
}

// relativeError computes |calculated - value| / |value|. A zero value
// with a zero calculation is a perfect match; a zero value otherwise is
// an unbounded error.
func relativeError(calculated, value float64) float64 {
	if value == 0 {
		if calculated == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(calculated-value) / math.Abs(value)
}
