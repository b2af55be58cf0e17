package analysis

import (
	"context"
	"fmt"
	"slices"

	"github.com/linesd/az-fda/pkg/label"
	"github.com/linesd/az-fda/pkg/query"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RecordSource retrieves every raw record of a query.
// *pagination.Fetcher implements it.
type RecordSource interface {
	FetchAll(ctx context.Context, q query.Query) ([]label.RawRecord, error)
}

// Session memoizes the extracted rows of one query so that several analysis
// kinds can be computed from a single retrieval. A Session is not safe for
// concurrent use.
type Session struct {
	source RecordSource
	query  query.Query
	rows   []label.Row
	loaded bool
	logger zerolog.Logger
}

// NewSession creates a session for q. Nothing is fetched until rows are needed.
func NewSession(source RecordSource, q query.Query) *Session {
	return &Session{
		source: source,
		query:  q,
		logger: log.With().Str("component", "analysis").Logger(),
	}
}

// Query returns the session's query.
func (s *Session) Query() query.Query {
	return s.query
}

// Rows fetches and extracts the query's records on first use and returns the
// memoized rows afterwards. Callers get their own copy of the rows. A failed
// load is not memoized.
func (s *Session) Rows(ctx context.Context) ([]label.Row, error) {
	if s.loaded {
		s.logger.Debug().Int("rows", len(s.rows)).Msg("Reusing extracted rows")
		return slices.Clone(s.rows), nil
	}

	records, err := s.source.FetchAll(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	rows, err := label.Extract(records)
	if err != nil {
		return nil, fmt.Errorf("extract records: %w", err)
	}

	s.logger.Info().
		Int("records", len(records)).
		Int("rows", len(rows)).
		Msg("Extracted ingredient information")

	s.rows = rows
	s.loaded = true
	return slices.Clone(s.rows), nil
}

// Analysis validates kind before any retrieval, then aggregates the
// session's rows. Every call recomputes the result.
func (s *Session) Analysis(ctx context.Context, kind Kind) (*Result, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(rows, kind)
}

// Series runs Analysis and reshapes the result for charting.
func (s *Session) Series(ctx context.Context, kind Kind) (*Result, *SeriesMatrix, error) {
	res, err := s.Analysis(ctx, kind)
	if err != nil {
		return nil, nil, err
	}

	m, err := Reshape(res)
	if err != nil {
		return nil, nil, err
	}
	return res, m, nil
}
