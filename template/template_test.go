package template

import (
	"testing"

	"github.com/tsawler/fintab/model"
	"github.com/tsawler/fintab/numbers"
)

// musterbank is the curated layout used across the package tests.
func musterbank() *Template {
	return &Template{
		ID:             "musterbank-depot",
		SourcePatterns: []string{"Musterbank", "Depotauszug"},
		Fields: []FieldMapping{
			{Field: model.FieldName, XStart: 110, XEnd: 200, Type: TypeText, Weight: 1},
			{Field: model.FieldQuantity, XStart: 270, XEnd: 340, Type: TypeNumber, Min: 1_000, Max: 10_000_000, Weight: 2},
			{Field: model.FieldPrice, XStart: 370, XEnd: 430, Type: TypeNumber, Min: 0.01, Max: 1_000, Weight: 2},
			{Field: model.FieldValue, XStart: 460, XEnd: 530, Type: TypeNumber, Weight: 2},
		},
		NumberFormat:        numbers.Swiss,
		ConfidenceThreshold: 0.4,
	}
}

func TestTemplateValidate(t *testing.T) {
	if err := musterbank().Validate(); err != nil {
		t.Fatalf("Expected valid template, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{"missing id", func(tpl *Template) { tpl.ID = "" }},
		{"no fields", func(tpl *Template) { tpl.Fields = nil }},
		{"unknown format", func(tpl *Template) { tpl.NumberFormat = "klingon" }},
		{"unnamed field", func(tpl *Template) { tpl.Fields[0].Field = "" }},
		{"unknown type", func(tpl *Template) { tpl.Fields[0].Type = "blob" }},
		{"inverted x range", func(tpl *Template) { tpl.Fields[0].XStart, tpl.Fields[0].XEnd = 200, 110 }},
		{"threshold out of range", func(tpl *Template) { tpl.ConfidenceThreshold = 1.5 }},
	}

	for _, tt := range tests {
		tpl := musterbank()
		tt.mutate(tpl)
		if err := tpl.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestDivisorDefaultsToOne(t *testing.T) {
	tpl := musterbank()
	if tpl.Divisor() != 1 {
		t.Errorf("Expected default divisor 1, got %f", tpl.Divisor())
	}

	tpl.ValueDivisor = 100
	if tpl.Divisor() != 100 {
		t.Errorf("Expected divisor 100, got %f", tpl.Divisor())
	}
}

func TestFieldMappingRange(t *testing.T) {
	unbounded := FieldMapping{Field: model.FieldValue, Type: TypeNumber}
	if unbounded.Bounded() {
		t.Error("Expected mapping without min/max to be unbounded")
	}
	if !unbounded.InRange(1e12) {
		t.Error("Expected unbounded mapping to accept any value")
	}

	bounded := FieldMapping{Field: model.FieldPrice, Type: TypeNumber, Min: 0.01, Max: 1_000}
	if !bounded.InRange(101.25) {
		t.Error("Expected 101.25 inside [0.01, 1000]")
	}
	if bounded.InRange(5_000) {
		t.Error("Expected 5000 outside [0.01, 1000]")
	}
}
