package analysis

import (
	"sort"

	"github.com/linesd/az-fda/pkg/label"
	"github.com/shopspring/decimal"
)

// NoRoute groups rows whose label carries no route.
const NoRoute = "none"

// Summary is one long-form aggregate row.
type Summary struct {
	Year string `json:"year"`

	// Route is set in ByRoute mode only.
	Route string `json:"route,omitempty"`

	// DrugNames is the sorted set of distinct drug names, set in Generic mode only.
	DrugNames []string `json:"drug_names,omitempty"`

	AverageNumIngredients float64 `json:"average_num_ingredients"`
}

// Result is the outcome of one aggregation.
type Result struct {
	Kind      Kind      `json:"kind"`
	Summaries []Summary `json:"summaries"`
}

// group accumulates ingredient counts for one key.
type group struct {
	sum   int64
	count int64
	names map[string]struct{}
}

func (g *group) add(row label.Row) {
	g.sum += int64(row.NumIngredients)
	g.count++
	if g.names != nil {
		g.names[row.DrugName] = struct{}{}
	}
}

// mean returns the group average rounded half to even at two decimals.
func (g *group) mean() float64 {
	avg := decimal.NewFromInt(g.sum).Div(decimal.NewFromInt(g.count)).RoundBank(2)
	f, _ := avg.Float64()
	return f
}

func (g *group) drugNames() []string {
	names := make([]string, 0, len(g.names))
	for name := range g.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type routeKey struct {
	year  string
	route string
}

// Aggregate groups rows according to kind and computes the mean number of
// ingredients per group. Output order depends only on the group keys.
func Aggregate(rows []label.Row, kind Kind) (*Result, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	if kind == ByRoute {
		return aggregateByRoute(rows), nil
	}
	return aggregateByYear(rows), nil
}

func aggregateByYear(rows []label.Row) *Result {
	groups := make(map[string]*group)
	for _, row := range rows {
		g, ok := groups[row.Year]
		if !ok {
			g = &group{names: make(map[string]struct{})}
			groups[row.Year] = g
		}
		g.add(row)
	}

	years := make([]string, 0, len(groups))
	for year := range groups {
		years = append(years, year)
	}
	sort.Strings(years)

	summaries := make([]Summary, 0, len(years))
	for _, year := range years {
		g := groups[year]
		summaries = append(summaries, Summary{
			Year:                  year,
			DrugNames:             g.drugNames(),
			AverageNumIngredients: g.mean(),
		})
	}
	return &Result{Kind: Generic, Summaries: summaries}
}

func aggregateByRoute(rows []label.Row) *Result {
	groups := make(map[routeKey]*group)
	for _, row := range rows {
		key := routeKey{year: row.Year, route: row.RouteOr(NoRoute)}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.add(row)
	}

	keys := make([]routeKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].route < keys[j].route
	})

	summaries := make([]Summary, 0, len(keys))
	for _, key := range keys {
		summaries = append(summaries, Summary{
			Year:                  key.year,
			Route:                 key.route,
			AverageNumIngredients: groups[key].mean(),
		})
	}
	return &Result{Kind: ByRoute, Summaries: summaries}
}
