// Package pagination retrieves every record matching an openFDA query.
//
// openFDA reports the number of matching records in meta.results.total and
// serves them through skip/limit windows of at most MaxPageSize records.
// The fetcher reads the total once, plans the windows and requests them one
// after another in ascending offset order.
//
// Example usage:
//
//	fetcher, err := pagination.NewFetcher(fdaClient, pagination.DefaultConfig())
//	records, err := fetcher.FetchAll(ctx, q)
//
// The fetcher:
//   - Issues one count request, then one request per window
//   - Never requests pages for an empty result set
//   - Returns records in request order
//   - Aborts on the first failed page (no partial results)
package pagination
