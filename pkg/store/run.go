package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linesd/az-fda/pkg/analysis"
)

// ErrNotFound is returned when no stored run matches a lookup.
var ErrNotFound = errors.New("run not found")

// Run is one completed analysis.
type Run struct {
	ID        string                 `json:"id"`
	Query     string                 `json:"query"`
	Kind      analysis.Kind          `json:"kind"`
	Result    *analysis.Result       `json:"result"`
	Matrix    *analysis.SeriesMatrix `json:"matrix"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewRun stamps an analysis with a fresh ID and the current time.
func NewRun(queryURL string, res *analysis.Result, m *analysis.SeriesMatrix) (*Run, error) {
	if res == nil {
		return nil, fmt.Errorf("result cannot be nil")
	}
	return &Run{
		ID:        uuid.NewString(),
		Query:     queryURL,
		Kind:      res.Kind,
		Result:    res,
		Matrix:    m,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Sink receives completed runs.
type Sink interface {
	Save(ctx context.Context, run *Run) error
	Close() error
}

// SaveAll writes run to every sink and joins the failures.
func SaveAll(ctx context.Context, run *Run, sinks ...Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Save(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
