// Package template stores and matches per-source layout templates.
//
// A [Template] describes one known source layout: the literal strings
// that identify it, an ordered list of [FieldMapping] column
// definitions, the number locale it prints values in, and the
// arithmetic convention (ValueDivisor) its line items follow.
//
// # Registry
//
// The [Registry] addresses templates by their caller-chosen ID. Saving
// an existing ID overwrites it; templates are curated offline, so last
// write wins is safe. Templates persist as self-describing YAML
// documents and are loaded eagerly:
//
//	reg, err := template.LoadRegistry("templates/")
//
// # Matching
//
// The [Matcher] scores every registered template against a
// [DocumentProfile] using three weighted factors: source pattern hits
// (0.4), structural fit of detected versus expected column counts
// (0.3), and number-locale consistency (0.3). The best template is
// selected only if its score meets the template's own confidence
// threshold; otherwise the matcher returns nil and callers fall back to
// template-free extraction.
package template
