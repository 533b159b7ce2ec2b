package models

// Row is one provider result keyed by field name. A value is a float64, a
// string, or nil when the provider had nothing for that field; absent keys are
// treated the same as nil.
type Row map[string]any

// Float returns the numeric value of field, or false when it is missing or
// not a number.
func (r Row) Float(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// ResultSet is the ordered row collection returned for one scan.
type ResultSet []Row

// Presentation is what gets rendered and exported for a scan.
type Presentation struct {
	Profile string   `json:"profile"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	NoMatch bool     `json:"no_match"`
}

// Values returns row values ordered by the presentation's columns.
func (p Presentation) Values(row Row) []any {
	out := make([]any, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = row[c]
	}
	return out
}
