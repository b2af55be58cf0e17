package store

import (
	"fmt"
	"strings"

	"github.com/linesd/az-fda/pkg/analysis"
)

const keyPrefix = "azfda"

// LatestKey identifies the most recent run for a query and analysis kind.
type LatestKey struct {
	// Query is the full request URL without paging parameters
	Query string

	// Kind is the analysis kind
	Kind analysis.Kind
}

// String generates a deterministic key string.
// Format: azfda:latest:kind:query
//
// Example:
//
//	azfda:latest:route:https://api.fda.gov/drug/label.json?search=openfda.manufacturer_name:%22Acme%22
func (k LatestKey) String() string {
	parts := []string{keyPrefix, "latest"}

	kind := strings.ToLower(strings.TrimSpace(string(k.Kind)))
	if kind != "" {
		parts = append(parts, kind)
	}

	if q := strings.TrimSpace(k.Query); q != "" {
		parts = append(parts, q)
	}

	return strings.Join(parts, ":")
}

// RunKey returns the key a single run is stored under.
func RunKey(id string) string {
	return fmt.Sprintf("%s:run:%s", keyPrefix, id)
}
