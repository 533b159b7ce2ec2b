package usecase

import (
	"testing"

	"TechScreener/internal/domain/models"
)

func TestPresentEmptyIsNoMatch(t *testing.T) {
	for _, p := range models.Profiles() {
		pres := Present(p, nil)
		if !pres.NoMatch {
			t.Fatalf("%s: expected NoMatch", p.Name)
		}
		if len(pres.Rows) != 0 {
			t.Fatalf("%s: expected no rows", p.Name)
		}
	}
}

func TestPresentTechnicalSortsByADX(t *testing.T) {
	rs := models.ResultSet{
		{models.FieldTicker: "NSE:A", models.FieldADX: 21.0},
		{models.FieldTicker: "NSE:B", models.FieldADX: 35.5},
		{models.FieldTicker: "NSE:C", models.FieldADX: nil},
		{models.FieldTicker: "NSE:D", models.FieldADX: 28.0},
	}

	pres := Present(models.TechnicalProfile, rs)
	if pres.NoMatch {
		t.Fatalf("unexpected NoMatch")
	}
	want := []string{"NSE:B", "NSE:D", "NSE:A", "NSE:C"}
	for i, w := range want {
		if got := pres.Rows[i][models.FieldTicker]; got != w {
			t.Fatalf("row %d: want %s, got %v", i, w, got)
		}
	}
	if len(pres.Columns) != len(models.TechnicalProfile.Fields)+1 || pres.Columns[0] != models.FieldTicker {
		t.Fatalf("unexpected columns %v", pres.Columns)
	}
	if _, ok := pres.Rows[0][models.FieldMACDHist]; ok {
		t.Fatalf("technical profile must not derive a histogram column")
	}
}

func TestPresentMomentumDerivesHistogram(t *testing.T) {
	rs := models.ResultSet{
		{models.FieldTicker: "NSE:X", models.FieldRSI: 55.0, models.FieldMACD: 1.5, models.FieldMACDSignal: 1.2},
		{models.FieldTicker: "NSE:Y", models.FieldRSI: 70.0, models.FieldMACD: nil, models.FieldMACDSignal: 0.4},
		{models.FieldTicker: "NSE:Z", models.FieldRSI: 62.0, models.FieldMACD: -0.1, models.FieldMACDSignal: 0.2},
	}

	pres := Present(models.MomentumProfile, rs)
	order := []string{"NSE:Y", "NSE:Z", "NSE:X"}
	for i, w := range order {
		if got := pres.Rows[i][models.FieldTicker]; got != w {
			t.Fatalf("row %d: want %s, got %v", i, w, got)
		}
	}

	if v, ok := pres.Rows[0][models.FieldMACDHist]; !ok || v != nil {
		t.Fatalf("missing input must yield nil histogram, got %v (present=%v)", v, ok)
	}
	if v := pres.Rows[1][models.FieldMACDHist]; v != -0.3 {
		t.Fatalf("want -0.3, got %v", v)
	}
	if v := pres.Rows[2][models.FieldMACDHist]; v != 0.3 {
		t.Fatalf("want 0.3, got %v", v)
	}

	cols := pres.Columns
	if len(cols) != len(models.MomentumProfile.DisplayColumns) {
		t.Fatalf("unexpected columns %v", cols)
	}
	if _, ok := rs[0][models.FieldMACDHist]; ok {
		t.Fatalf("input rows must not be modified")
	}
}

func TestSortDescendingIsStable(t *testing.T) {
	rows := []models.Row{
		{"id": 1, "k": 5.0},
		{"id": 2, "k": 7.0},
		{"id": 3, "k": 5.0},
		{"id": 4, "k": 7.0},
		{"id": 5, "k": "n/a"},
		{"id": 6, "k": 5.0},
	}
	SortDescending(rows, "k")

	want := []int{2, 4, 1, 3, 6, 5}
	for i, w := range want {
		if rows[i]["id"] != w {
			t.Fatalf("position %d: want id %d, got %v", i, w, rows[i]["id"])
		}
	}
}

func TestDeriveDifferenceNonNumeric(t *testing.T) {
	col := models.DerivedColumn{Name: "diff", Minuend: "a", Subtrahend: "b"}
	rows := []models.Row{
		{"a": 3.0, "b": 1.0},
		{"a": "x", "b": 1.0},
		{"b": 1.0},
	}
	DeriveDifference(rows, col)
	if rows[0]["diff"] != 2.0 {
		t.Fatalf("want 2, got %v", rows[0]["diff"])
	}
	for i := 1; i < len(rows); i++ {
		if v, ok := rows[i]["diff"]; !ok || v != nil {
			t.Fatalf("row %d: want nil diff, got %v", i, v)
		}
	}
}
