package pagination

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/linesd/az-fda/pkg/client"
	"github.com/linesd/az-fda/pkg/query"
)

// fakeGetter serves canned bodies keyed by URL and records every request.
type fakeGetter struct {
	bodies map[string]string
	fail   map[string]error
	urls   []string
}

func (g *fakeGetter) Get(ctx context.Context, rawURL string) (*client.Response, error) {
	g.urls = append(g.urls, rawURL)
	if err, ok := g.fail[rawURL]; ok {
		return nil, err
	}
	body, ok := g.bodies[rawURL]
	if !ok {
		return &client.Response{StatusCode: 404, Body: []byte(`{"error": {"code": "NOT_FOUND"}}`)}, nil
	}
	return &client.Response{StatusCode: 200, Body: []byte(body)}, nil
}

func testQuery(t *testing.T) query.Query {
	t.Helper()
	q, err := query.New("http://fda.test/drug/label.json?search=openfda.manufacturer_name:", "Acme")
	if err != nil {
		t.Fatalf("query.New() error = %v", err)
	}
	return q
}

func countBody(total string) string {
	return fmt.Sprintf(`{"meta": {"results": {"skip": 0, "limit": 1, "total": %s}}, "results": []}`, total)
}

func TestCounter_Count(t *testing.T) {
	q := testQuery(t)

	tests := []struct {
		name      string
		body      string
		want      int
		wantError error
	}{
		{name: "valid total", body: countBody("150"), want: 150},
		{name: "zero total", body: countBody("0"), want: 0},
		{name: "float total", body: countBody("1.5"), wantError: client.ErrMalformedResponse},
		{name: "string total", body: countBody(`"150"`), wantError: client.ErrMalformedResponse},
		{name: "null total", body: countBody("null"), wantError: client.ErrMalformedResponse},
		{name: "negative total", body: countBody("-3"), wantError: client.ErrMalformedResponse},
		{name: "missing meta", body: `{"error": {"code": "NOT_FOUND"}}`, wantError: client.ErrMalformedResponse},
		{name: "missing results", body: `{"meta": {}}`, wantError: client.ErrMalformedResponse},
		{name: "missing total", body: `{"meta": {"results": {"skip": 0}}}`, wantError: client.ErrMalformedResponse},
		{name: "not json", body: `<html>oops</html>`, wantError: client.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getter := &fakeGetter{bodies: map[string]string{q.URL(): tt.body}}
			got, err := NewCounter(getter).Count(context.Background(), q)

			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("Count() error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
			if len(getter.urls) != 1 {
				t.Errorf("Count() made %d requests, want 1", len(getter.urls))
			}
		})
	}
}

func TestCounter_TransportFailure(t *testing.T) {
	q := testQuery(t)
	getter := &fakeGetter{
		fail: map[string]error{q.URL(): fmt.Errorf("dial: %w", client.ErrRemoteUnavailable)},
	}

	_, err := NewCounter(getter).Count(context.Background(), q)
	if !errors.Is(err, client.ErrRemoteUnavailable) {
		t.Errorf("Count() error = %v, want ErrRemoteUnavailable", err)
	}
}
