package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/linesd/az-fda/pkg/client"
	"github.com/linesd/az-fda/pkg/query"
)

// Getter is the transport the pagination layer needs.
// *client.Client implements it.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*client.Response, error)
}

// countEnvelope is the part of an openFDA response that carries the total.
type countEnvelope struct {
	Meta *struct {
		Results *struct {
			Total json.RawMessage `json:"total"`
		} `json:"results"`
	} `json:"meta"`
}

// Counter asks openFDA how many records match a query.
type Counter struct {
	getter Getter
}

// NewCounter creates a counter on top of the given transport.
func NewCounter(getter Getter) *Counter {
	return &Counter{getter: getter}
}

// Count returns the total number of records matching q.
func (c *Counter) Count(ctx context.Context, q query.Query) (int, error) {
	resp, err := c.getter.Get(ctx, q.URL())
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return parseTotal(resp.Body)
}

// parseTotal reads meta.results.total from a response body.
func parseTotal(body []byte) (int, error) {
	var env countEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, fmt.Errorf("%w: decode count response: %v", client.ErrMalformedResponse, err)
	}
	if env.Meta == nil || env.Meta.Results == nil || len(env.Meta.Results.Total) == 0 {
		return 0, fmt.Errorf("%w: missing meta.results.total", client.ErrMalformedResponse)
	}

	total, err := strconv.Atoi(string(env.Meta.Results.Total))
	if err != nil {
		return 0, fmt.Errorf("%w: meta.results.total is not an integer: %s",
			client.ErrMalformedResponse, env.Meta.Results.Total)
	}
	if total < 0 {
		return 0, fmt.Errorf("%w: negative meta.results.total %d", client.ErrMalformedResponse, total)
	}
	return total, nil
}
