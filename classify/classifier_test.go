package classify

import (
	"testing"

	"github.com/tsawler/fintab/model"
)

func tok(text string, x0, y0, x1, y1 float64) model.Token {
	return model.Token{Text: text, BBox: model.NewBBox(x0, y0, x1, y1), Page: 1}
}

// lineItem is a typical holdings row: anchor, two name tokens, then
// quantity, price and value. Tokens are ordered left to right, as the
// clusterer produces them.
func lineItem() ([]model.Token, model.Token) {
	anchor := tok("CH0012032048", 40, 700, 105, 710)
	row := []model.Token{
		anchor,
		tok("Roche", 120, 700, 160, 710),
		tok("GS", 165, 700, 185, 710),
		tok("10'000", 280, 700, 320, 710),
		tok("101.25", 380, 700, 415, 710),
		tok("1'012'500", 470, 700, 520, 710),
	}
	return row, anchor
}

func TestClassifyLineItem(t *testing.T) {
	c := NewClassifier()
	row, anchor := lineItem()

	res := c.Classify(row, anchor, "")

	q, ok := res.Fields[model.FieldQuantity]
	if !ok || q.Value != 10000 {
		t.Errorf("Expected quantity 10000, got %+v (ok=%v)", q, ok)
	}
	p, ok := res.Fields[model.FieldPrice]
	if !ok || p.Value != 101.25 {
		t.Errorf("Expected price 101.25, got %+v (ok=%v)", p, ok)
	}
	v, ok := res.Fields[model.FieldValue]
	if !ok || v.Value != 1012500 {
		t.Errorf("Expected value 1012500, got %+v (ok=%v)", v, ok)
	}

	if res.Name != "Roche GS" {
		t.Errorf("Expected name %q, got %q", "Roche GS", res.Name)
	}
}

func TestClassifyNoTokenAssignedTwice(t *testing.T) {
	c := NewClassifier()
	row, anchor := lineItem()

	res := c.Classify(row, anchor, "")

	seen := make(map[string]string)
	for field, s := range res.Fields {
		if prev, dup := seen[s.Raw]; dup {
			t.Errorf("Token %q assigned to both %q and %q", s.Raw, prev, field)
		}
		seen[s.Raw] = field
	}
}

func TestClassifyKeywordBoost(t *testing.T) {
	c := NewClassifier()
	row, anchor := lineItem()

	plain := c.Classify(row, anchor, "")
	boosted := c.Classify(row, anchor, "Quantity Price Value")

	for _, field := range []string{model.FieldQuantity, model.FieldPrice, model.FieldValue} {
		if boosted.Fields[field].Score <= plain.Fields[field].Score {
			t.Errorf("Expected keyword context to raise %s score (%f vs %f)",
				field, boosted.Fields[field].Score, plain.Fields[field].Score)
		}
	}
}

func TestClassifyScoreGate(t *testing.T) {
	config := DefaultConfig()
	config.MinScore = 0.99 // nothing can reach this
	c := NewClassifierWithConfig(config)

	row, anchor := lineItem()
	res := c.Classify(row, anchor, "")

	if res.NumericFieldCount() != 0 {
		t.Errorf("Expected no fields above an unreachable gate, got %d", res.NumericFieldCount())
	}
}

func TestClassifyExcludesIdentifierShapes(t *testing.T) {
	c := NewClassifier()
	anchor := tok("CH0012032048", 40, 700, 105, 710)
	row := []model.Token{
		anchor,
		// A second identifier and an all-digit identifier-shaped token
		// must never be classified as values.
		tok("US0378331005", 120, 700, 185, 710),
		tok("123456789012", 280, 700, 320, 710),
		tok("10'000", 380, 700, 415, 710),
		tok("101.25", 470, 700, 520, 710),
	}

	res := c.Classify(row, anchor, "")

	for field, s := range res.Fields {
		if s.Raw == "US0378331005" || s.Raw == "123456789012" {
			t.Errorf("Identifier-shaped token %q classified as %s", s.Raw, field)
		}
	}
}

func TestClassifyPercentage(t *testing.T) {
	c := NewClassifier()
	anchor := tok("CH0012032048", 40, 700, 105, 710)
	row := []model.Token{
		anchor,
		tok("Nestle", 120, 700, 160, 710),
		tok("10'000", 280, 700, 320, 710),
		tok("101.25", 380, 700, 415, 710),
		tok("1'012'500", 470, 700, 520, 710),
		tok("3.25%", 540, 700, 570, 710),
	}

	res := c.Classify(row, anchor, "")

	pct, ok := res.Fields[model.FieldPercentage]
	if !ok || pct.Value != 3.25 {
		t.Errorf("Expected percentage 3.25, got %+v (ok=%v)", pct, ok)
	}
}

func TestClassifyPartialRow(t *testing.T) {
	c := NewClassifier()
	anchor := tok("DE0007164600", 40, 700, 105, 710)
	row := []model.Token{
		anchor,
		tok("SAP", 120, 700, 150, 710),
		tok("2'000", 280, 700, 320, 710),
	}

	res := c.Classify(row, anchor, "")

	if res.NumericFieldCount() != 1 {
		t.Fatalf("Expected exactly 1 numeric field, got %d", res.NumericFieldCount())
	}
	if _, ok := res.Fields[model.FieldQuantity]; !ok {
		t.Error("Expected the single numeric token to classify as quantity")
	}
	if res.Name != "SAP" {
		t.Errorf("Expected name %q, got %q", "SAP", res.Name)
	}
}

func TestAssembleNameStopsAtFirstNumber(t *testing.T) {
	c := NewClassifier()
	anchor := tok("CH0012032048", 40, 700, 105, 710)
	row := []model.Token{
		anchor,
		tok("Swiss", 120, 700, 150, 710),
		tok("Re", 155, 700, 170, 710),
		tok("5'000", 280, 700, 320, 710),
		tok("Ltd", 330, 700, 350, 710), // after a number: not part of the name
	}

	res := c.Classify(row, anchor, "")

	if res.Name != "Swiss Re" {
		t.Errorf("Expected name %q, got %q", "Swiss Re", res.Name)
	}
}
