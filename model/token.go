package model

// Token represents a positioned piece of text supplied by an external
// document decoder. Tokens are never mutated by the engine; one token
// list is the complete input for a document-processing run.
type Token struct {
	Text     string
	BBox     BBox
	Page     int // 1-indexed
	FontSize float64
	FontName string
}

// XCenter returns the horizontal center of the token.
func (t Token) XCenter() float64 {
	return (t.BBox.X0 + t.BBox.X1) / 2
}

// YCenter returns the vertical center of the token.
func (t Token) YCenter() float64 {
	return (t.BBox.Y0 + t.BBox.Y1) / 2
}

// IsMalformed reports whether the token must be excluded from clustering
// inputs: a degenerate bounding box or an out-of-range page number.
func (t Token) IsMalformed() bool {
	return t.BBox.IsDegenerate() || t.Page < 1
}
