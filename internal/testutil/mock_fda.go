// Package testutil provides testing utilities for the openFDA pipeline.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// LabelPath is the path the mock serves drug labels on.
const LabelPath = "/drug/label.json"

// MockResponse defines a canned response for a mock endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// PageRequest is a skip/limit pair seen by the mock.
type PageRequest struct {
	Skip  int
	Limit int
}

// MockFDA is a configurable mock openFDA server for testing.
// By default it serves its record set with openFDA paging semantics.
type MockFDA struct {
	server   *httptest.Server
	mu       sync.RWMutex
	records  []map[string]any
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	failures map[int]MockResponse

	// Tracking
	RequestCount  int
	CountRequests int
	PageRequests  []PageRequest
	LastUserAgent string
}

// NewMockFDA creates a new mock openFDA server serving records.
func NewMockFDA(records ...map[string]any) *MockFDA {
	mock := &MockFDA{
		records:  records,
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		failures: make(map[int]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastUserAgent = r.Header.Get("User-Agent")
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.labelHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockFDA) URL() string {
	return m.server.URL
}

// BaseURL returns a label search base URL pointing at the mock, ready for a manufacturer filter.
func (m *MockFDA) BaseURL() string {
	return m.server.URL + LabelPath + "?search=openfda.manufacturer_name:"
}

// Close shuts down the mock server.
func (m *MockFDA) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockFDA) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.CountRequests = 0
	m.PageRequests = nil
	m.LastUserAgent = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockFDA) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockFDA) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// FailPage makes the page request starting at skip return resp instead of records.
func (m *MockFDA) FailPage(skip int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[skip] = resp
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockFDA) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastUserAgent returns the User-Agent of the most recent request.
func (m *MockFDA) GetLastUserAgent() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastUserAgent
}

// GetCountRequests returns the number of requests made without paging parameters.
func (m *MockFDA) GetCountRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CountRequests
}

// GetPageRequests returns the skip/limit pairs requested so far, in order.
func (m *MockFDA) GetPageRequests() []PageRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PageRequest, len(m.PageRequests))
	copy(out, m.PageRequests)
	return out
}

// labelHandler serves the record set the way openFDA does: a request without
// skip/limit gets the first record and the total, a paged request gets its window.
func (m *MockFDA) labelHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != LabelPath {
		writeResponse(w, NewNotFoundResponse())
		return
	}

	params := r.URL.Query()
	skipParam, limitParam := params.Get("skip"), params.Get("limit")

	m.mu.Lock()
	total := len(m.records)
	if skipParam == "" && limitParam == "" {
		m.CountRequests++
		page := m.records[:min(1, total)]
		m.mu.Unlock()
		writePage(w, 0, 1, total, page)
		return
	}

	skip, errSkip := strconv.Atoi(skipParam)
	limit, errLimit := strconv.Atoi(limitParam)
	if errSkip != nil || errLimit != nil || skip < 0 || limit < 0 {
		m.mu.Unlock()
		writeResponse(w, MockResponse{
			StatusCode: http.StatusBadRequest,
			Body:       `{"error": {"code": "BAD_REQUEST", "message": "Invalid skip or limit"}}`,
		})
		return
	}
	m.PageRequests = append(m.PageRequests, PageRequest{Skip: skip, Limit: limit})
	failure, failing := m.failures[skip]
	start, end := min(skip, total), min(skip+limit, total)
	page := m.records[start:end]
	m.mu.Unlock()

	if failing {
		writeResponse(w, failure)
		return
	}
	writePage(w, skip, limit, total, page)
}

func writePage(w http.ResponseWriter, skip, limit, total int, results []map[string]any) {
	if results == nil {
		results = []map[string]any{}
	}
	body, _ := json.Marshal(map[string]any{
		"meta": map[string]any{
			"disclaimer": "Do not rely on openFDA to make decisions regarding medical care.",
			"results": map[string]any{
				"skip":  skip,
				"limit": limit,
				"total": total,
			},
		},
		"results": results,
	})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewNotFoundResponse creates the 404 openFDA sends when nothing matches.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": {"code": "NOT_FOUND", "message": "No matches found!"}}`,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": {"code": "SERVER_ERROR", "message": "Check your request and try again"}}`,
	}
}

// NewLabel builds a drug-label record. An empty route leaves openfda.route out
// and each ingredient becomes one comma-separated token of the product data element.
func NewLabel(effectiveTime, genericName, route string, ingredients ...string) map[string]any {
	openfda := map[string]any{
		"generic_name":      []any{genericName},
		"manufacturer_name": []any{"Acme Pharmaceuticals LP"},
	}
	if route != "" {
		openfda["route"] = []any{route}
	}
	return map[string]any{
		"effective_time":            effectiveTime,
		"spl_product_data_elements": []any{strings.Join(ingredients, ", ")},
		"openfda":                   openfda,
	}
}
