package models

import (
	"sort"
	"strconv"
)

// DerivedColumn is Minuend - Subtrahend, appended to each row as Name.
type DerivedColumn struct {
	Name       string `json:"name"`
	Minuend    string `json:"minuend"`
	Subtrahend string `json:"subtrahend"`
}

// Profile configures the translator and presenter for one screener variant.
type Profile struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	MovingAverage string `json:"moving_average"` // field prefix: EMA or SMA
	TrendStrength bool   `json:"trend_strength"`
	// Fields is requested verbatim from the provider.
	Fields  []string       `json:"fields"`
	Derived *DerivedColumn `json:"derived,omitempty"`
	// DisplayColumns is the exported column order; empty means ticker + Fields.
	DisplayColumns []string `json:"display_columns,omitempty"`
	SortField      string   `json:"sort_field"`
	SheetName      string   `json:"sheet_name"`
	FileName       string   `json:"file_name"`
}

// MovingAverageField returns the provider field for the profile's MA family.
func (p Profile) MovingAverageField(period int) string {
	return p.MovingAverage + strconv.Itoa(period)
}

// Columns returns the presenter column order including ticker and any
// derived column.
func (p Profile) Columns() []string {
	if len(p.DisplayColumns) > 0 {
		return append([]string(nil), p.DisplayColumns...)
	}
	cols := make([]string, 0, len(p.Fields)+2)
	cols = append(cols, FieldTicker)
	cols = append(cols, p.Fields...)
	if p.Derived != nil {
		cols = append(cols, p.Derived.Name)
	}
	return cols
}

// XLSXContentType is the MIME type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	TechnicalProfile = Profile{
		Name:          "technical",
		Title:         "Indian Stock Technical Screener",
		MovingAverage: "EMA",
		TrendStrength: true,
		Fields: []string{
			FieldName, FieldSector, FieldClose, FieldChange, FieldVolume,
			FieldRSI, "EMA20", "EMA50", "EMA200",
			FieldBBUpper, FieldBBLower, FieldStochK, FieldStochD,
			FieldADX, FieldPlusDI, FieldMinusDI,
		},
		SortField: FieldADX,
		SheetName: "Technical",
		FileName:  "india_technical_screener.xlsx",
	}

	MomentumProfile = Profile{
		Name:          "momentum",
		Title:         "Indian Stock Momentum Screener",
		MovingAverage: "SMA",
		Fields: []string{
			FieldName, FieldSector, FieldClose, FieldChange, FieldVolume,
			FieldRSI, "SMA20", "SMA50", "SMA200",
			FieldBBUpper, FieldBBLower, FieldStochK, FieldStochD,
			FieldPlusDI, FieldMinusDI, FieldMACD, FieldMACDSignal,
		},
		Derived: &DerivedColumn{Name: FieldMACDHist, Minuend: FieldMACD, Subtrahend: FieldMACDSignal},
		DisplayColumns: []string{
			FieldTicker, FieldName, FieldClose, FieldChange, FieldVolume,
			FieldRSI, FieldMACD, FieldMACDSignal, FieldMACDHist, FieldStochK, FieldStochD,
		},
		SortField: FieldRSI,
		SheetName: "Momentum",
		FileName:  "india_momentum_screener.xlsx",
	}

	profiles = map[string]Profile{
		TechnicalProfile.Name: TechnicalProfile,
		MomentumProfile.Name:  MomentumProfile,
	}
)

// LookupProfile returns the profile registered under name.
func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// Profiles returns every registered profile sorted by name.
func Profiles() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
