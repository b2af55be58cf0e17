package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/linesd/az-fda/pkg/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReshape_Generic(t *testing.T) {
	res := &Result{
		Kind: Generic,
		Summaries: []Summary{
			{Year: "2012", DrugNames: []string{"A"}, AverageNumIngredients: 2.5},
			{Year: "2016", DrugNames: []string{"B"}, AverageNumIngredients: 3},
			{Year: "2019", DrugNames: []string{"C"}, AverageNumIngredients: 1.33},
		},
	}

	m, err := Reshape(res)
	require.NoError(t, err)

	want := &SeriesMatrix{
		Years:  []string{"2012", "2016", "2019"},
		Series: []string{GenericSeries},
		Values: [][]float64{{2.5}, {3}, {1.33}},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Reshape() mismatch (-want +got):\n%s", diff)
	}
}

func TestReshape_GenericKeepsGivenOrder(t *testing.T) {
	res := &Result{
		Kind: Generic,
		Summaries: []Summary{
			{Year: "2019", AverageNumIngredients: 1},
			{Year: "2012", AverageNumIngredients: 2},
		},
	}

	m, err := Reshape(res)
	require.NoError(t, err)
	assert.Equal(t, []string{"2019", "2012"}, m.Years)
	assert.Equal(t, []float64{1, 2}, m.Column(GenericSeries))
}

func TestReshape_ByRouteFillsZero(t *testing.T) {
	res := &Result{
		Kind: ByRoute,
		Summaries: []Summary{
			{Year: "2016", Route: "ORAL", AverageNumIngredients: 2},
			{Year: "2018", Route: "TOPICAL", AverageNumIngredients: 4},
			{Year: "2019", Route: "ORAL", AverageNumIngredients: 1.5},
			{Year: "2019", Route: NoRoute, AverageNumIngredients: 3},
		},
	}

	m, err := Reshape(res)
	require.NoError(t, err)

	want := &SeriesMatrix{
		Years:  []string{"2016", "2018", "2019"},
		Series: []string{"ORAL", "TOPICAL", NoRoute},
		Values: [][]float64{
			{2, 0, 0},
			{0, 4, 0},
			{1.5, 0, 3},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Reshape() mismatch (-want +got):\n%s", diff)
	}

	// Row count is the union of years, not the years of any one route.
	assert.Len(t, m.Years, 3)
	assert.Equal(t, []float64{0, 4, 0}, m.Column("TOPICAL"))

	v, ok := m.Value("2016", "TOPICAL")
	assert.True(t, ok)
	assert.Zero(t, v)

	_, ok = m.Value("2000", "ORAL")
	assert.False(t, ok)
	assert.Nil(t, m.Column("BUCCAL"))
}

func TestReshape_Empty(t *testing.T) {
	for _, kind := range Kinds() {
		m, err := Reshape(&Result{Kind: kind})
		require.NoError(t, err)
		assert.Empty(t, m.Years)
		assert.Empty(t, m.Values)
	}
}

func TestReshape_Invalid(t *testing.T) {
	_, err := Reshape(&Result{Kind: "bogus"})
	require.ErrorIs(t, err, ErrUnsupportedAnalysisType)

	_, err = Reshape(nil)
	require.Error(t, err)
}

func TestReshape_Deterministic(t *testing.T) {
	rows := []label.Row{
		row("2018", "A", route("ORAL"), 1),
		row("2019", "B", nil, 2),
		row("2019", "C", route("TOPICAL"), 3),
		row("2017", "D", route("ORAL"), 4),
	}

	run := func() *SeriesMatrix {
		res, err := Aggregate(rows, ByRoute)
		require.NoError(t, err)
		m, err := Reshape(res)
		require.NoError(t, err)
		return m
	}

	first, second := run(), run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated runs differ (-first +second):\n%s", diff)
	}
}
