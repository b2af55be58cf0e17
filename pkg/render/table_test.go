package render

import (
	"strings"
	"testing"

	"github.com/linesd/az-fda/pkg/analysis"
)

func TestResultTable(t *testing.T) {
	tests := []struct {
		name string
		res  *analysis.Result
		want []string
	}{
		{
			name: "generic",
			res: &analysis.Result{
				Kind: analysis.Generic,
				Summaries: []analysis.Summary{
					{Year: "2019", DrugNames: []string{"ALPHA", "ZED"}, AverageNumIngredients: 1.67},
				},
			},
			want: []string{"drug_names", "ALPHA, ZED", "1.67", "average_number_of_ingredients"},
		},
		{
			name: "route",
			res: &analysis.Result{
				Kind: analysis.ByRoute,
				Summaries: []analysis.Summary{
					{Year: "2018", Route: "ORAL", AverageNumIngredients: 3},
					{Year: "2018", Route: analysis.NoRoute, AverageNumIngredients: 2.5},
				},
			},
			want: []string{"route", "ORAL", "none", "3.00", "2.50"},
		},
		{
			name: "nil result",
			res:  nil,
			want: []string{"year", "drug_names", "average_number_of_ingredients"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ResultTable(tt.res)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("ResultTable() missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestMatrixTable_GenericHeader(t *testing.T) {
	out := MatrixTable(genericMatrix())
	if !strings.Contains(out, "Average Number of Ingredients") {
		t.Errorf("MatrixTable() missing series label:\n%s", out)
	}
	if !strings.Contains(out, "2.50") || !strings.Contains(out, "1.33") {
		t.Errorf("MatrixTable() missing values:\n%s", out)
	}
}

func TestMatrixTable_Nil(t *testing.T) {
	out := MatrixTable(nil)
	if !strings.Contains(out, "year") {
		t.Errorf("MatrixTable(nil) missing header:\n%s", out)
	}
}
