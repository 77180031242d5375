package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents a token bounding box as corner coordinates
// (X0,Y0 bottom-left, X1,Y1 top-right, PDF coordinate system).
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// NewBBox creates a bounding box from corner coordinates, normalizing
// so that X0 <= X1 and Y0 <= Y1.
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X0
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X1
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y0
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y1
}

// Width returns the horizontal extent
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: (b.X0 + b.X1) / 2,
		Y: (b.Y0 + b.Y1) / 2,
	}
}

// Contains checks if a point is inside the bounding box
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 &&
		p.Y >= b.Y0 && p.Y <= b.Y1
}

// Intersects checks if two bounding boxes intersect
func (b BBox) Intersects(other BBox) bool {
	return !(b.X1 < other.X0 ||
		b.X0 > other.X1 ||
		b.Y1 < other.Y0 ||
		b.Y0 > other.Y1)
}

// Union returns the union of two bounding boxes
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

// IsDegenerate returns true if the box has zero or negative extent in
// either dimension. Degenerate boxes are excluded from clustering inputs.
func (b BBox) IsDegenerate() bool {
	return b.Width() <= 0 || b.Height() <= 0
}
