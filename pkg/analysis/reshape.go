package analysis

import (
	"errors"
	"sort"
)

// GenericSeries names the single series of a Generic matrix.
const GenericSeries = "average_num_ingredients"

// SeriesMatrix is the wide-form view of a Result: one row per year and one
// column per series. Values[i][j] belongs to Years[i] and Series[j]; combinations
// missing from the Result hold an explicit zero.
type SeriesMatrix struct {
	Years  []string    `json:"years"`
	Series []string    `json:"series"`
	Values [][]float64 `json:"values"`
}

// Value returns the cell for year and series.
func (m *SeriesMatrix) Value(year, series string) (float64, bool) {
	i, j := indexOf(m.Years, year), indexOf(m.Series, series)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// Column returns the values of one series in year order.
func (m *SeriesMatrix) Column(series string) []float64 {
	j := indexOf(m.Series, series)
	if j < 0 {
		return nil
	}
	col := make([]float64, len(m.Years))
	for i := range m.Years {
		col[i] = m.Values[i][j]
	}
	return col
}

// Reshape pivots a Result into a SeriesMatrix.
func Reshape(res *Result) (*SeriesMatrix, error) {
	if res == nil {
		return nil, errors.New("reshape: nil result")
	}
	if err := res.Kind.Validate(); err != nil {
		return nil, err
	}

	if res.Kind == ByRoute {
		return reshapeByRoute(res.Summaries), nil
	}
	return reshapeGeneric(res.Summaries), nil
}

// reshapeGeneric keeps the years in the order the summaries list them.
func reshapeGeneric(summaries []Summary) *SeriesMatrix {
	m := &SeriesMatrix{
		Years:  []string{},
		Series: []string{GenericSeries},
		Values: [][]float64{},
	}
	seen := make(map[string]bool)
	for _, s := range summaries {
		if seen[s.Year] {
			continue
		}
		seen[s.Year] = true
		m.Years = append(m.Years, s.Year)
		m.Values = append(m.Values, []float64{s.AverageNumIngredients})
	}
	return m
}

// reshapeByRoute uses the union of years across every route as the row index.
func reshapeByRoute(summaries []Summary) *SeriesMatrix {
	years := distinct(summaries, func(s Summary) string { return s.Year })
	routes := distinct(summaries, func(s Summary) string { return s.Route })

	values := make([][]float64, len(years))
	for i := range values {
		values[i] = make([]float64, len(routes))
	}

	yearIdx := positions(years)
	routeIdx := positions(routes)
	for _, s := range summaries {
		values[yearIdx[s.Year]][routeIdx[s.Route]] = s.AverageNumIngredients
	}

	return &SeriesMatrix{Years: years, Series: routes, Values: values}
}

// distinct returns the sorted set of keys.
func distinct(summaries []Summary, key func(Summary) string) []string {
	set := make(map[string]struct{})
	for _, s := range summaries {
		set[key(s)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func positions(keys []string) map[string]int {
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[k] = i
	}
	return idx
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}
