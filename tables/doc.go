// Package tables reconstructs table structure from token geometry.
//
// No gridlines or document structure are assumed: rows and columns are
// hypothesized purely from coordinate clustering.
//
// # Algorithm
//
// The [Clusterer] runs per page:
//
//  1. Column hypotheses: 1-D clustering of token x-centers with a
//     minimum-gap threshold; clusters with too few members are dropped.
//  2. Row hypotheses: the same clustering on y-centers with a tighter
//     threshold; a usable row needs an anchor plus two data fields.
//  3. Each row gets a y-tolerance: its own center dispersion, floored
//     to absorb jitter, clamped so adjacent rows never overlap.
//  4. Each column gets an inferred semantic [ColumnKind] from a bounded
//     set of sample values, with the supporting fraction as confidence.
//
// Clustering sorts internally, so results are stable no matter how the
// input token list is ordered.
//
// # Configuration
//
// Behavior is controlled by [Config]:
//
//	config := tables.DefaultConfig()
//	config.ColumnGap = 40
//	clusterer := tables.NewClustererWithConfig(config)
//	columns, rows := clusterer.Cluster(page, tokens)
package tables
