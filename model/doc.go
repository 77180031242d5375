// Package model provides the data types shared across the extraction
// pipeline.
//
// The engine's atomic input is the [Token]: a piece of text with a
// bounding box and a 1-indexed page number, produced by an external
// document decoder. Its output is the [Record]: one extracted security
// line-item per anchor identifier, carrying a field map, per-field and
// overall confidence scores, and a [ValidationStatus] from the
// arithmetic cross-check.
//
// # Geometry
//
// Geometric primitives support the spatial queries and clustering that
// reconstruct table structure:
//
//   - [BBox] - corner-based bounding box (PDF coordinate system, Y up)
//   - [Point] - 2D point with distance calculation
//
// # Records
//
// Record fields are accessed by name; the well-known names used by the
// contextual classifier are exported as constants (FieldQuantity,
// FieldPrice, FieldValue, FieldPercentage, FieldName). Templates may
// introduce arbitrary additional field names.
package model
