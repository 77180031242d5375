// Package fintab provides a fluent API for extracting security
// line-item records from positioned text tokens.
//
// The input is a flat stream of tokens with bounding boxes and page
// numbers, produced by an external document decoder; fintab never
// touches raw document bytes. Table structure is reconstructed from
// geometry, numeric tokens are classified into semantic fields, and
// each record is cross-validated against the arithmetic invariant
// quantity x price = value.
//
// Basic usage:
//
//	records, err := fintab.FromTokens(tokens).Extract()
//	if err != nil {
//	    // handle error
//	}
//
// With a template registry and options:
//
//	records, err := fintab.FromTokens(tokens).
//	    WithRegistry(registry).
//	    Pages(1, 2, 3).
//	    Extract()
//
// Every record carries a validation status and confidence scores, so
// accept/flag/reject policy stays with the caller. For advanced use
// cases, the lower-level spatial, tables, classify, template, extract
// and validate packages are also available.
package fintab

import (
	"errors"
	"fmt"

	"github.com/tsawler/fintab/extract"
	"github.com/tsawler/fintab/model"
	"github.com/tsawler/fintab/spatial"
	"github.com/tsawler/fintab/template"
)

// ErrNoTokens is returned when Extract is called with no input tokens;
// an empty token list is a caller contract violation, not a document
// content problem.
var ErrNoTokens = errors.New("fintab: no input tokens")

// FromTokens creates an Extractor over a document's token stream for
// fluent configuration.
//
// Example:
//
//	records, err := fintab.FromTokens(tokens).Extract()
func FromTokens(tokens []model.Token) *Extractor {
	return &Extractor{
		tokens:  tokens,
		config:  extract.DefaultConfig(),
		options: defaultOptions(),
	}
}

// Extractor configures and runs one extraction. Methods return the
// receiver for chaining; Extract is the terminal operation.
type Extractor struct {
	tokens   []model.Token
	registry *template.Registry
	config   extract.Config
	options  ExtractOptions
}

// WithRegistry supplies the template registry consulted for layout
// matching. Without a registry every record is extracted template-free.
func (e *Extractor) WithRegistry(reg *template.Registry) *Extractor {
	e.registry = reg
	return e
}

// WithConfig replaces the full pipeline configuration.
func (e *Extractor) WithConfig(config extract.Config) *Extractor {
	e.config = config
	return e
}

// Pages restricts extraction to the given 1-indexed pages.
func (e *Extractor) Pages(pages ...int) *Extractor {
	e.options.pages = append([]int(nil), pages...)
	return e
}

// MinScore overrides the classifier's minimum field assignment score.
func (e *Extractor) MinScore(score float64) *Extractor {
	e.options.minScore = score
	return e
}

// ForceTemplate bypasses template matching and extracts with the given
// template ID. Extract fails if the ID is not registered.
func (e *Extractor) ForceTemplate(id string) *Extractor {
	e.options.forceTemplate = id
	return e
}

// Aggressive lowers the classifier score gate and accepts the best
// template regardless of its confidence threshold. Use when recall
// matters more than precision, for example on degraded scans.
func (e *Extractor) Aggressive() *Extractor {
	e.options.aggressive = true
	return e
}

// Extract runs the pipeline and returns one record per anchor found.
// Content problems never fail the run; they surface as confidence and
// status fields on the records. Extract fails only on caller contract
// violations: an empty token list or an unknown forced template ID.
func (e *Extractor) Extract() ([]*model.Record, error) {
	if len(e.tokens) == 0 {
		return nil, ErrNoTokens
	}

	cfg := e.config
	if e.options.minScore >= 0 {
		cfg.Classify.MinScore = e.options.minScore
	}
	if e.options.aggressive {
		cfg.Classify.MinScore /= 2
	}

	ix := spatial.NewIndex(e.selectTokens())
	asm := extract.NewAssembler(ix, cfg)

	tpl, err := e.selectTemplate(asm)
	if err != nil {
		return nil, err
	}

	return asm.Run(tpl), nil
}

// selectTokens applies the page selection option.
func (e *Extractor) selectTokens() []model.Token {
	if e.options.pages == nil {
		return e.tokens
	}
	wanted := make(map[int]bool, len(e.options.pages))
	for _, p := range e.options.pages {
		wanted[p] = true
	}
	var out []model.Token
	for _, t := range e.tokens {
		if wanted[t.Page] {
			out = append(out, t)
		}
	}
	return out
}

// selectTemplate resolves the template for this run: the forced one,
// the matcher's best candidate, or nil for template-free extraction.
func (e *Extractor) selectTemplate(asm *extract.Assembler) (*template.Template, error) {
	if e.options.forceTemplate != "" {
		if e.registry == nil {
			return nil, fmt.Errorf("fintab: template %q forced but no registry supplied", e.options.forceTemplate)
		}
		tpl := e.registry.Get(e.options.forceTemplate)
		if tpl == nil {
			return nil, fmt.Errorf("fintab: unknown template %q", e.options.forceTemplate)
		}
		return tpl, nil
	}

	if e.registry == nil {
		return nil, nil
	}

	mc := template.DefaultMatcherConfig()
	mc.IgnoreThresholds = e.options.aggressive
	tpl, _ := template.NewMatcherWithConfig(mc).Select(e.registry, asm.Profile())
	return tpl, nil
}
