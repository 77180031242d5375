// Package spatial provides read-only spatial queries over the token
// stream of one document. The index is built once per run and never
// mutated; every query is side-effect free.
package spatial

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tsawler/fintab/model"
)

// Index buckets tokens by page and answers band and radius queries.
type Index struct {
	pages   map[int][]model.Token // sorted top-to-bottom, then left-to-right
	nums    []int                 // sorted page numbers
	text    string                // full document text, page order
	skipped int                   // malformed tokens excluded at build time
}

// NewIndex builds an index from the full token list. Malformed tokens
// (degenerate bounding box, page number below 1) are excluded and do
// not abort processing.
func NewIndex(tokens []model.Token) *Index {
	ix := &Index{pages: make(map[int][]model.Token)}

	for _, t := range tokens {
		if t.IsMalformed() {
			ix.skipped++
			continue
		}
		ix.pages[t.Page] = append(ix.pages[t.Page], t)
	}
	if ix.skipped > 0 {
		log.Debug().Int("count", ix.skipped).Msg("excluded malformed tokens")
	}

	for p, toks := range ix.pages {
		sortTopDown(toks)
		ix.pages[p] = toks
		ix.nums = append(ix.nums, p)
	}
	sort.Ints(ix.nums)

	var sb strings.Builder
	for _, p := range ix.nums {
		for _, t := range ix.pages[p] {
			sb.WriteString(t.Text)
			sb.WriteByte(' ')
		}
	}
	ix.text = sb.String()

	return ix
}

// Pages returns the page numbers present in the document, ascending.
func (ix *Index) Pages() []int {
	out := make([]int, len(ix.nums))
	copy(out, ix.nums)
	return out
}

// PageTokens returns the tokens on a page, sorted top-to-bottom then
// left-to-right. The returned slice must not be modified.
func (ix *Index) PageTokens(page int) []model.Token {
	return ix.pages[page]
}

// TokenCount returns the number of indexed tokens.
func (ix *Index) TokenCount() int {
	n := 0
	for _, toks := range ix.pages {
		n += len(toks)
	}
	return n
}

// SkippedCount returns the number of malformed tokens excluded at build
// time.
func (ix *Index) SkippedCount() int {
	return ix.skipped
}

// DocumentText returns all token text concatenated in page order,
// space-separated. Used for template pattern matching.
func (ix *Index) DocumentText() string {
	return ix.text
}

// TokensInBand returns the tokens on a page whose vertical centers fall
// within tolerance of yCenter, sorted left-to-right.
func (ix *Index) TokensInBand(page int, yCenter, tolerance float64) []model.Token {
	var out []model.Token
	for _, t := range ix.pages[page] {
		d := t.YCenter() - yCenter
		if d >= -tolerance && d <= tolerance {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BBox.X0 < out[j].BBox.X0
	})
	return out
}

// TokensNear returns the tokens on a page whose centers lie within
// radius of the given point. Results are unordered unless sortByX is
// set, in which case they are sorted by left edge.
func (ix *Index) TokensNear(page int, x, y, radius float64, sortByX bool) []model.Token {
	origin := model.Point{X: x, Y: y}
	var out []model.Token
	for _, t := range ix.pages[page] {
		if t.BBox.Center().Distance(origin) <= radius {
			out = append(out, t)
		}
	}
	if sortByX {
		sort.Slice(out, func(i, j int) bool {
			return out[i].BBox.X0 < out[j].BBox.X0
		})
	}
	return out
}

// sortTopDown orders tokens top-to-bottom then left-to-right, with the
// text as a final tie-breaker so ordering is stable under input
// shuffling.
func sortTopDown(toks []model.Token) {
	sort.Slice(toks, func(i, j int) bool {
		yi, yj := toks[i].YCenter(), toks[j].YCenter()
		if yi != yj {
			return yi > yj // PDF coordinates: larger Y is higher on the page
		}
		xi, xj := toks[i].BBox.X0, toks[j].BBox.X0
		if xi != xj {
			return xi < xj
		}
		return toks[i].Text < toks[j].Text
	})
}
