package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linesd/az-fda/pkg/client"
	"github.com/linesd/az-fda/pkg/label"
	"github.com/linesd/az-fda/pkg/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fda_pages_fetched_total",
		Help: "Total number of openFDA result pages fetched",
	})

	recordsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fda_records_fetched_total",
		Help: "Total number of openFDA records fetched",
	})
)

// Config holds fetcher configuration.
type Config struct {
	// PageSize is the limit requested per page, at most MaxPageSize
	PageSize int
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: MaxPageSize,
	}
}

// pageEnvelope is the part of an openFDA response that carries records.
type pageEnvelope struct {
	Results *[]label.RawRecord `json:"results"`
}

// Fetcher retrieves every record of a query page by page.
type Fetcher struct {
	getter  Getter
	counter *Counter
	config  Config
	logger  zerolog.Logger
}

// NewFetcher creates a new fetcher.
func NewFetcher(getter Getter, config Config) (*Fetcher, error) {
	if getter == nil {
		return nil, fmt.Errorf("getter is required")
	}
	if config.PageSize <= 0 || config.PageSize > MaxPageSize {
		return nil, fmt.Errorf("page size must be in [1, %d] (got %d)", MaxPageSize, config.PageSize)
	}

	return &Fetcher{
		getter:  getter,
		counter: NewCounter(getter),
		config:  config,
		logger:  log.With().Str("component", "pagination").Logger(),
	}, nil
}

// FetchAll counts the records matching q and fetches them in ascending
// offset order. Any failure discards the records fetched so far.
func (f *Fetcher) FetchAll(ctx context.Context, q query.Query) ([]label.RawRecord, error) {
	start := time.Now()

	total, err := f.counter.Count(ctx, q)
	if err != nil {
		return nil, err
	}

	windows, err := Windows(total, f.config.PageSize)
	if err != nil {
		return nil, err
	}
	pages := PageCount(total, f.config.PageSize)

	f.logger.Info().
		Str("query", q.URL()).
		Int("total_records", total).
		Int("pages", pages).
		Msg("Starting page fetch")

	// total comes from the remote count; only one page is reserved up front.
	records := make([]label.RawRecord, 0, min(total, f.config.PageSize))
	for w := range windows {
		f.logger.Info().
			Msgf("Retrieving %d-%d of %d records", w.Offset, w.End(), total)

		page, err := f.fetchPage(ctx, q, w)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		pagesFetched.Inc()
	}
	recordsFetched.Add(float64(len(records)))

	f.logger.Info().
		Int("records", len(records)).
		Int("pages", pages).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return records, nil
}

// fetchPage requests a single window and decodes its results.
func (f *Fetcher) fetchPage(ctx context.Context, q query.Query, w Window) ([]label.RawRecord, error) {
	resp, err := f.getter.Get(ctx, q.PageURL(w.Offset, w.Limit))
	if err != nil {
		return nil, fmt.Errorf("fetch page at offset %d: %w", w.Offset, err)
	}

	var env pageEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode page at offset %d: %v", client.ErrMalformedResponse, w.Offset, err)
	}
	if env.Results == nil {
		return nil, fmt.Errorf("%w: page at offset %d has no results", client.ErrMalformedResponse, w.Offset)
	}

	f.logger.Debug().
		Int("offset", w.Offset).
		Int("limit", w.Limit).
		Int("records", len(*env.Results)).
		Msg("Page fetched")

	return *env.Results, nil
}
