package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/linesd/az-fda/pkg/analysis"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
}

// MatrixTable renders a SeriesMatrix as a console table, one row per year.
// A nil matrix renders as an empty table.
func MatrixTable(m *analysis.SeriesMatrix) string {
	headers := []string{"year"}
	if m == nil {
		return newTable(headers, nil).Render()
	}
	for _, s := range m.Series {
		headers = append(headers, SeriesLabel(s))
	}

	rows := make([][]string, 0, len(m.Years))
	for i, year := range m.Years {
		row := []string{year}
		for _, v := range m.Values[i] {
			row = append(row, formatValue(v))
		}
		rows = append(rows, row)
	}
	return newTable(headers, rows).Render()
}

// ResultTable renders the long-form summaries of a Result.
// A nil result renders as an empty generic table.
func ResultTable(res *analysis.Result) string {
	if res == nil {
		res = &analysis.Result{Kind: analysis.Generic}
	}
	var headers []string
	if res.Kind == analysis.ByRoute {
		headers = []string{"year", "route", "average_number_of_ingredients"}
	} else {
		headers = []string{"year", "drug_names", "average_number_of_ingredients"}
	}

	rows := make([][]string, 0, len(res.Summaries))
	for _, s := range res.Summaries {
		second := s.Route
		if res.Kind != analysis.ByRoute {
			second = strings.Join(s.DrugNames, ", ")
		}
		rows = append(rows, []string{s.Year, second, formatValue(s.AverageNumIngredients)})
	}
	return newTable(headers, rows).Render()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
