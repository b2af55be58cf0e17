package label

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrMalformedRecord indicates a record is missing a required field.
var ErrMalformedRecord = errors.New("malformed record")

var recordsExtracted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fda_records_extracted_total",
	Help: "Total number of drug-label records extracted into rows",
})

// Extract maps every record into a Row, in input order.
// The first malformed record aborts extraction and no rows are returned.
func Extract(records []RawRecord) ([]Row, error) {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row, err := ExtractRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	recordsExtracted.Add(float64(len(rows)))
	return rows, nil
}

// ExtractRecord maps a single record into a Row.
func ExtractRecord(rec RawRecord) (Row, error) {
	effective, ok := rec[FieldEffectiveTime].(string)
	if !ok {
		return Row{}, malformed(FieldEffectiveTime)
	}
	year, ok := leadingChars(effective, 4)
	if !ok {
		return Row{}, malformed(FieldEffectiveTime)
	}

	openfda, _ := rec[FieldOpenFDA].(map[string]any)

	drugName, ok := firstString(openfda[FieldGenericName])
	if !ok {
		return Row{}, malformed(FieldOpenFDA + "." + FieldGenericName)
	}

	manufacturer, ok := firstString(openfda[FieldManufacturerName])
	if !ok {
		return Row{}, malformed(FieldOpenFDA + "." + FieldManufacturerName)
	}

	elements, ok := firstString(rec[FieldProductElements])
	if !ok {
		return Row{}, malformed(FieldProductElements)
	}

	row := Row{
		Year:           year,
		DrugName:       drugName,
		NumIngredients: len(strings.Split(elements, ",")),
		Manufacturer:   manufacturer,
	}

	// Any failure looking up the route leaves it absent.
	if route, ok := firstString(openfda[FieldRoute]); ok {
		row.Route = &route
	}

	return row, nil
}

// firstString returns the first element of a JSON string array.
func firstString(v any) (string, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return "", false
	}
	s, ok := list[0].(string)
	return s, ok
}

// leadingChars returns the first n characters of s, counted in runes.
func leadingChars(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) < n {
		return "", false
	}
	end := 0
	for range n {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end], true
}

func malformed(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedRecord, field)
}
