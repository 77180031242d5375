package extract

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/tsawler/fintab/model"
	"github.com/tsawler/fintab/numbers"
	"github.com/tsawler/fintab/spatial"
)

// Anchor is a deduplicated anchor occurrence: the identifier value and
// the first token carrying it, in global document order.
type Anchor struct {
	ID    string
	Token model.Token
}

// FindAnchors scans the document for identifier tokens and returns one
// anchor per identifier value, first occurrence wins. "First" follows a
// single stable global order - page, then row position top-down, then
// left-to-right - so deduplication is reproducible even if pages were
// clustered in parallel.
//
// Tokens that are identifier-shaped but fail the checksum are discarded
// silently (logged at debug level only).
func FindAnchors(ix *spatial.Index) []Anchor {
	var candidates []model.Token
	for _, page := range ix.Pages() {
		for _, t := range ix.PageTokens(page) {
			if !numbers.IsIdentifierShaped(t.Text) {
				continue
			}
			if !numbers.ValidIdentifier(t.Text) {
				log.Debug().
					Str("text", t.Text).
					Int("page", t.Page).
					Msg("discarding unparsable anchor candidate")
				continue
			}
			candidates = append(candidates, t)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.YCenter() != b.YCenter() {
			return a.YCenter() > b.YCenter() // top of page first
		}
		return a.BBox.X0 < b.BBox.X0
	})

	seen := make(map[string]bool)
	var anchors []Anchor
	for _, t := range candidates {
		if seen[t.Text] {
			continue
		}
		seen[t.Text] = true
		anchors = append(anchors, Anchor{ID: t.Text, Token: t})
	}
	return anchors
}
