// Package extract orchestrates the extraction pipeline: anchor
// discovery and deduplication, row clustering, template-guided or
// classifier-based field extraction, and arithmetic cross-validation.
//
// The [Assembler] is the single decision path: when a template was
// selected it queries the index at the template's declared positions,
// otherwise it delegates to the contextual classifier on the anchor's
// row. Every valid anchor yields exactly one record; content problems
// surface as confidence and status on the record, never as errors.
package extract
