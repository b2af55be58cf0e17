// Package query describes an openFDA search request.
package query

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL searches drug labels by manufacturer name.
const DefaultBaseURL = "https://api.fda.gov/drug/label.json?search=openfda.manufacturer_name:"

// Query is a base URL plus a filter clause. It is immutable once built.
type Query struct {
	baseURL string
	filter  string
}

// New creates a query from a base URL and a caller-supplied filter clause.
// The filter is used verbatim and must already be URL-safe.
func New(baseURL, filter string) (Query, error) {
	if strings.TrimSpace(baseURL) == "" {
		return Query{}, fmt.Errorf("base url is empty")
	}
	return Query{baseURL: baseURL, filter: filter}, nil
}

// ForManufacturer builds a query matching the quoted manufacturer name.
// The phrase is escaped so that spaces and quotes survive the request line.
func ForManufacturer(baseURL, manufacturer string) (Query, error) {
	if strings.TrimSpace(manufacturer) == "" {
		return Query{}, fmt.Errorf("manufacturer is empty")
	}
	return New(baseURL, url.PathEscape(`"`+manufacturer+`"`))
}

// BaseURL returns the base URL the query was built from.
func (q Query) BaseURL() string {
	return q.baseURL
}

// Filter returns the filter clause.
func (q Query) Filter() string {
	return q.filter
}

// URL returns the full request URL without paging parameters.
func (q Query) URL() string {
	return q.baseURL + q.filter
}

// PageURL returns the request URL for a single page of results.
func (q Query) PageURL(offset, limit int) string {
	return fmt.Sprintf("%s&skip=%d&limit=%d", q.URL(), offset, limit)
}

// String implements fmt.Stringer.
func (q Query) String() string {
	return q.URL()
}
