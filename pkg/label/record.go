// Package label maps raw openFDA drug-label records into fixed-shape rows.
//
// Only the route field is optional: every other field the analysis needs must
// be present, and the first record that lacks one aborts the whole batch.
package label

// RawRecord is a single drug-label result as decoded from the openFDA JSON.
// Its schema is owned by openFDA.
type RawRecord map[string]any

// Field names read from a RawRecord.
const (
	FieldEffectiveTime    = "effective_time"
	FieldOpenFDA          = "openfda"
	FieldGenericName      = "generic_name"
	FieldManufacturerName = "manufacturer_name"
	FieldRoute            = "route"
	FieldProductElements  = "spl_product_data_elements"
)

// Row is the fixed-shape projection of one drug label.
type Row struct {
	// Year is the first four characters of effective_time.
	Year string `json:"year"`

	DrugName string `json:"drug_name"`

	// Route is nil when the label carries no usable route.
	Route *string `json:"route"`

	// NumIngredients counts the comma-separated tokens of the first product data element.
	NumIngredients int `json:"num_ingredients"`

	Manufacturer string `json:"manufacturer"`
}

// RouteOr returns the row's route, or fallback when the route is absent.
func (r Row) RouteOr(fallback string) string {
	if r.Route == nil {
		return fallback
	}
	return *r.Route
}
