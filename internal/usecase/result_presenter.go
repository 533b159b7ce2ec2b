package usecase

import (
	"sort"

	"TechScreener/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Present shapes provider rows for rendering and export. An empty result set
// short-circuits to a NoMatch presentation without deriving or sorting.
func Present(p models.Profile, rs models.ResultSet) models.Presentation {
	if len(rs) == 0 {
		return models.Presentation{Profile: p.Name, NoMatch: true}
	}

	rows := make([]models.Row, len(rs))
	for i, r := range rs {
		cp := make(models.Row, len(r)+1)
		for k, v := range r {
			cp[k] = v
		}
		rows[i] = cp
	}

	if p.Derived != nil {
		DeriveDifference(rows, *p.Derived)
	}
	SortDescending(rows, p.SortField)

	return models.Presentation{
		Profile: p.Name,
		Columns: p.Columns(),
		Rows:    rows,
	}
}

// DeriveDifference sets col.Name on every row to Minuend - Subtrahend. A
// missing or non-numeric input yields nil for that row only.
func DeriveDifference(rows []models.Row, col models.DerivedColumn) {
	for _, r := range rows {
		a, okA := r.Float(col.Minuend)
		b, okB := r.Float(col.Subtrahend)
		if !okA || !okB {
			r[col.Name] = nil
			continue
		}
		r[col.Name] = decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).InexactFloat64()
	}
}

// SortDescending orders rows by field, highest first. Ties keep their input
// order; rows without a numeric value sink to the bottom.
func SortDescending(rows []models.Row, field string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, okA := rows[i].Float(field)
		b, okB := rows[j].Float(field)
		switch {
		case okA && okB:
			return a > b
		case okA:
			return true
		default:
			return false
		}
	})
}
