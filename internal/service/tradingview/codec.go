package tradingview

import (
	"fmt"

	"TechScreener/internal/domain/models"

	"github.com/tidwall/gjson"
)

// ScanPayload is the body posted to the scanner endpoint.
type ScanPayload struct {
	Markets []string      `json:"markets"`
	Symbols symbolsFilter `json:"symbols"`
	Options scanOptions   `json:"options"`
	Columns []string      `json:"columns"`
	Filter  []filterRow   `json:"filter"`
	Range   [2]int        `json:"range"`
	Preset  string        `json:"preset,omitempty"`
}

type symbolsFilter struct {
	Query   symbolsQuery `json:"query"`
	Tickers []string     `json:"tickers"`
}

type symbolsQuery struct {
	Types []string `json:"types"`
}

type scanOptions struct {
	Lang string `json:"lang"`
}

type filterRow struct {
	Left      string      `json:"left"`
	Operation string      `json:"operation"`
	Right     interface{} `json:"right"`
}

var operations = map[models.Operator]string{
	models.OpEqual:          "equal",
	models.OpGreater:        "greater",
	models.OpGreaterOrEqual: "egreater",
	models.OpLess:           "less",
	models.OpLessOrEqual:    "eless",
	models.OpHas:            "has",
}

// EncodeQuery converts a query into the scanner payload.
func EncodeQuery(q models.Query) (ScanPayload, error) {
	rows := make([]filterRow, 0, len(q.Predicates))
	for _, p := range q.Predicates {
		row, err := encodePredicate(p)
		if err != nil {
			return ScanPayload{}, err
		}
		rows = append(rows, row)
	}

	req := ScanPayload{
		Markets: []string{q.Market},
		Symbols: symbolsFilter{Query: symbolsQuery{Types: []string{}}, Tickers: []string{}},
		Options: scanOptions{Lang: "en"},
		Columns: append([]string(nil), q.Fields...),
		Filter:  rows,
		Range:   [2]int{0, q.Limit},
	}
	if q.Preset.IsSet() {
		req.Preset = string(q.Preset)
	}
	return req, nil
}

func encodePredicate(p models.Predicate) (filterRow, error) {
	op, ok := operations[p.Op]
	if !ok {
		return filterRow{}, fmt.Errorf("unsupported operator %q on %s", p.Op, p.Field)
	}
	row := filterRow{Left: p.Field, Operation: op}

	o := p.Operand
	switch o.Kind {
	case models.OperandNumber:
		row.Right = o.Number
	case models.OperandText:
		row.Right = o.Text
	case models.OperandBool:
		row.Right = o.Bool
	case models.OperandTextSet:
		row.Right = o.Texts
	case models.OperandField:
		if !o.IsScaled() {
			row.Right = o.Field
			break
		}
		// Scaled references use the percentage operations: right is [field, factor].
		// They are strict, so only > and < have an exact encoding.
		switch p.Op {
		case models.OpGreater:
			row.Operation = "above%"
		case models.OpLess:
			row.Operation = "below%"
		default:
			return filterRow{}, fmt.Errorf("operator %q cannot take a scaled field", p.Op)
		}
		row.Right = []interface{}{o.Field, o.Scale}
	default:
		return filterRow{}, fmt.Errorf("unsupported operand kind %d on %s", o.Kind, p.Field)
	}
	return row, nil
}

// DecodeRows reads `data[].s` and `data[].d` from a scanner response. d is
// positional against fields; short or null entries become nil values.
func DecodeRows(body []byte, fields []string) (models.ResultSet, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json response")
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return models.ResultSet{}, nil
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("unexpected data type %s", data.Type)
	}

	items := data.Array()
	rows := make(models.ResultSet, 0, len(items))
	for _, item := range items {
		row := make(models.Row, len(fields)+1)
		row[models.FieldTicker] = item.Get("s").String()
		values := item.Get("d").Array()
		for i, f := range fields {
			if i >= len(values) {
				row[f] = nil
				continue
			}
			row[f] = value(values[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func value(r gjson.Result) any {
	switch r.Type {
	case gjson.Number:
		return r.Float()
	case gjson.String:
		return r.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}
