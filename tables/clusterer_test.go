package tables

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/tsawler/fintab/model"
)

func tok(text string, x0, y0, x1, y1 float64, page int) model.Token {
	return model.Token{Text: text, BBox: model.NewBBox(x0, y0, x1, y1), Page: page}
}

// statementPage builds a small two-row holdings table plus a header.
func statementPage() []model.Token {
	return []model.Token{
		// header
		tok("Quantity", 280, 750, 330, 760, 1),
		tok("Price", 380, 750, 420, 760, 1),
		tok("Value", 480, 750, 520, 760, 1),
		// first line item
		tok("CH0012032048", 40, 700, 105, 710, 1),
		tok("Roche", 120, 700, 160, 710, 1),
		tok("10'000", 280, 700, 320, 710, 1),
		tok("101.25", 380, 700, 415, 710, 1),
		tok("1'012'500", 470, 700, 520, 710, 1),
		// second line item
		tok("US0378331005", 40, 670, 105, 680, 1),
		tok("Apple", 120, 670, 160, 680, 1),
		tok("5'000", 280, 670, 320, 680, 1),
		tok("150.50", 380, 670, 415, 680, 1),
		tok("752'500", 470, 670, 520, 680, 1),
	}
}

func TestClusterRows(t *testing.T) {
	c := NewClusterer()
	_, rows := c.Cluster(1, statementPage())

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows (header + 2 line items), got %d", len(rows))
	}

	// Rows come back top to bottom.
	if rows[0].YCenter < rows[1].YCenter || rows[1].YCenter < rows[2].YCenter {
		t.Error("Expected rows ordered top to bottom")
	}

	// Line-item rows carry their anchor.
	if rows[1].AnchorID != "CH0012032048" {
		t.Errorf("Expected first line-item anchor CH0012032048, got %q", rows[1].AnchorID)
	}
	if rows[2].AnchorID != "US0378331005" {
		t.Errorf("Expected second line-item anchor US0378331005, got %q", rows[2].AnchorID)
	}

	// Tokens within a row are ordered left to right.
	for _, row := range rows {
		for i := 1; i < len(row.Tokens); i++ {
			if row.Tokens[i].BBox.X0 < row.Tokens[i-1].BBox.X0 {
				t.Errorf("Row at y=%f not x-sorted", row.YCenter)
			}
		}
	}
}

func TestClusterColumns(t *testing.T) {
	c := NewClusterer()
	columns, _ := c.Cluster(1, statementPage())

	if len(columns) < 4 {
		t.Fatalf("Expected at least 4 columns, got %d", len(columns))
	}

	// Columns come back left to right with sane ranges.
	for i, col := range columns {
		if col.XEnd < col.XStart {
			t.Errorf("Column %d has inverted x range", i)
		}
		if i > 0 && col.XStart < columns[i-1].XStart {
			t.Error("Expected columns ordered left to right")
		}
	}

	// The identifier column is recognized.
	var idCol *Column
	for i := range columns {
		if columns[i].ContainsX(72.5) {
			idCol = &columns[i]
			break
		}
	}
	if idCol == nil {
		t.Fatal("Expected a column covering the identifier x range")
	}
	if idCol.Kind != KindIdentifier {
		t.Errorf("Expected identifier column kind, got %s", idCol.Kind)
	}
}

func TestClusterDeterministicUnderShuffle(t *testing.T) {
	c := NewClusterer()
	baseCols, baseRows := c.Cluster(1, statementPage())

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := statementPage()
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		cols, rows := c.Cluster(1, shuffled)
		if !reflect.DeepEqual(cols, baseCols) {
			t.Fatalf("Trial %d: columns differ under shuffled input", trial)
		}
		if !reflect.DeepEqual(rows, baseRows) {
			t.Fatalf("Trial %d: rows differ under shuffled input", trial)
		}
	}
}

func TestClusterDiscardsSmallRows(t *testing.T) {
	tokens := []model.Token{
		// Only two tokens on this line: below the row minimum.
		tok("CH0012032048", 40, 700, 105, 710, 1),
		tok("10'000", 280, 700, 320, 710, 1),
		// A full row elsewhere.
		tok("US0378331005", 40, 600, 105, 610, 1),
		tok("5'000", 280, 600, 320, 610, 1),
		tok("150.50", 380, 600, 415, 610, 1),
	}

	c := NewClusterer()
	_, rows := c.Cluster(1, tokens)

	if len(rows) != 1 {
		t.Fatalf("Expected 1 usable row, got %d", len(rows))
	}
	if rows[0].AnchorID != "US0378331005" {
		t.Errorf("Expected the surviving row to be the full one, got anchor %q", rows[0].AnchorID)
	}
}

func TestRowToleranceFloor(t *testing.T) {
	// Tokens perfectly aligned: dispersion is zero, tolerance must
	// still be floored.
	tokens := []model.Token{
		tok("CH0012032048", 40, 700, 105, 710, 1),
		tok("Roche", 120, 700, 160, 710, 1),
		tok("10'000", 280, 700, 320, 710, 1),
	}

	c := NewClusterer()
	_, rows := c.Cluster(1, tokens)

	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].YTolerance < DefaultConfig().MinYTolerance {
		t.Errorf("Expected tolerance >= floor %f, got %f",
			DefaultConfig().MinYTolerance, rows[0].YTolerance)
	}
}

func TestRowToleranceDoesNotOverlapNeighbours(t *testing.T) {
	// Two rows only 12 units apart: tolerances must be clamped so the
	// bands cannot overlap.
	tokens := []model.Token{
		tok("CH0012032048", 40, 700, 105, 710, 1),
		tok("Roche", 120, 700, 160, 710, 1),
		tok("10'000", 280, 700, 320, 710, 1),
		tok("US0378331005", 40, 688, 105, 698, 1),
		tok("Apple", 120, 688, 160, 698, 1),
		tok("5'000", 280, 688, 320, 698, 1),
	}

	c := NewClusterer()
	_, rows := c.Cluster(1, tokens)

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	gap := rows[0].YCenter - rows[1].YCenter
	if rows[0].YTolerance+rows[1].YTolerance > gap {
		t.Errorf("Row tolerances %f+%f overlap gap %f",
			rows[0].YTolerance, rows[1].YTolerance, gap)
	}
}

func TestColumnKindInference(t *testing.T) {
	tests := []struct {
		samples []string
		want    ColumnKind
	}{
		{[]string{"CH0012032048", "US0378331005"}, KindIdentifier},
		{[]string{"10'000", "5'000", "200'000"}, KindQuantity},
		{[]string{"101.25", "150.50", "99.1991"}, KindPrice},
		{[]string{"1'012'500.50", "752'500.25"}, KindValue},
		{[]string{"2.5%", "3.1%"}, KindPercentage},
		{[]string{"Roche", "Apple"}, KindName},
	}

	for _, tt := range tests {
		got, conf := inferKind(tt.samples)
		if got != tt.want {
			t.Errorf("inferKind(%v) = %s, want %s", tt.samples, got, tt.want)
		}
		if conf <= 0 || conf > 1 {
			t.Errorf("inferKind(%v) confidence %f outside (0,1]", tt.samples, conf)
		}
	}
}

func TestClusterEmptyPage(t *testing.T) {
	c := NewClusterer()
	cols, rows := c.Cluster(1, nil)
	if cols != nil || rows != nil {
		t.Error("Expected nil output for empty page")
	}
}
