// Package analysis turns extracted drug-label rows into yearly statistics.
//
// Aggregate produces long-form summaries (one per year, or one per year and
// route) holding the mean number of ingredients. Reshape pivots them into a
// wide-form SeriesMatrix, one row per year and one column per series, which is
// what the renderer draws.
//
// Means are computed exactly with decimal arithmetic and rounded to two
// places using round half to even, so 0.125 becomes 0.12 and 0.375 becomes 0.38.
//
// A Session fetches and extracts rows once and reuses them for every analysis
// kind requested during its lifetime:
//
//	session := analysis.NewSession(fetcher, q)
//	generic, err := session.Analysis(ctx, analysis.Generic)
//	byRoute, err := session.Analysis(ctx, analysis.ByRoute)
package analysis
