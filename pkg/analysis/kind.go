package analysis

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnsupportedAnalysisType is returned for an unknown analysis kind.
var ErrUnsupportedAnalysisType = errors.New("unsupported analysis type")

// Kind selects how rows are grouped.
type Kind string

const (
	// Generic groups rows by year.
	Generic Kind = "generic"

	// ByRoute groups rows by year and route of administration.
	ByRoute Kind = "route"
)

// Kinds returns every supported analysis kind.
func Kinds() []Kind {
	return []Kind{Generic, ByRoute}
}

// ParseKind converts a user-supplied name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// Validate reports whether k is a supported kind.
func (k Kind) Validate() error {
	if !slices.Contains(Kinds(), k) {
		return fmt.Errorf("%w: %q (only %q and %q are implemented)",
			ErrUnsupportedAnalysisType, string(k), Generic, ByRoute)
	}
	return nil
}

func (k Kind) String() string {
	return string(k)
}
