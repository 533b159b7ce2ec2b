package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Provider field names.
const (
	FieldTicker      = "ticker"
	FieldName        = "name"
	FieldSector      = "sector"
	FieldType        = "type"
	FieldTypeSpecs   = "typespecs"
	FieldIsPrimary   = "is_primary"
	FieldClose       = "close"
	FieldChange      = "change"
	FieldVolume      = "volume"
	FieldRSI         = "RSI"
	FieldADX         = "ADX"
	FieldPlusDI      = "ADX+DI"
	FieldMinusDI     = "ADX-DI"
	FieldBBUpper     = "BB.upper"
	FieldBBLower     = "BB.lower"
	FieldStochK      = "Stoch.K"
	FieldStochD      = "Stoch.D"
	FieldMACD        = "MACD.macd"
	FieldMACDSignal  = "MACD.signal"
	FieldMACDHist    = "MACD.hist"
	InstrumentStock  = "stock"
	InstrumentCommon = "common"
)

// Operator is a comparison between a field and an operand.
type Operator string

const (
	OpEqual          Operator = "eq"
	OpGreater        Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLess           Operator = "lt"
	OpLessOrEqual    Operator = "lte"
	OpHas            Operator = "has"
)

var operatorSymbols = map[Operator]string{
	OpEqual:          "==",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpHas:            "has",
}

// Symbol returns the infix form used in logs.
func (o Operator) Symbol() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return string(o)
}

// OperandKind tags which member of Operand is meaningful.
type OperandKind int

const (
	OperandNumber OperandKind = iota
	OperandText
	OperandBool
	OperandTextSet
	OperandField
)

// Operand is the right-hand side of a predicate: a literal or a reference to
// another field, optionally scaled.
type Operand struct {
	Kind   OperandKind
	Number float64
	Text   string
	Bool   bool
	Texts  []string
	Field  string
	Scale  float64
}

func Number(v float64) Operand { return Operand{Kind: OperandNumber, Number: v} }

func Text(s string) Operand { return Operand{Kind: OperandText, Text: s} }

func Bool(b bool) Operand { return Operand{Kind: OperandBool, Bool: b} }

func TextSet(s ...string) Operand { return Operand{Kind: OperandTextSet, Texts: s} }

// FieldRef compares against another field of the same row.
func FieldRef(name string) Operand { return Operand{Kind: OperandField, Field: name, Scale: 1} }

// ScaledFieldRef compares against another field multiplied by scale.
func ScaledFieldRef(name string, scale float64) Operand {
	return Operand{Kind: OperandField, Field: name, Scale: scale}
}

// IsScaled reports whether a field reference carries a non-unit multiplier.
func (o Operand) IsScaled() bool {
	return o.Kind == OperandField && o.Scale != 0 && o.Scale != 1
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandNumber:
		return strconv.FormatFloat(o.Number, 'f', -1, 64)
	case OperandText:
		return strconv.Quote(o.Text)
	case OperandBool:
		return strconv.FormatBool(o.Bool)
	case OperandTextSet:
		return "[" + strings.Join(o.Texts, ",") + "]"
	case OperandField:
		if o.IsScaled() {
			return fmt.Sprintf("%s*%s", o.Field, strconv.FormatFloat(o.Scale, 'f', -1, 64))
		}
		return o.Field
	default:
		return "?"
	}
}

// MarshalJSON renders literals as plain JSON values and field references as
// {"field": ..., "scale": ...}.
func (o Operand) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OperandNumber:
		return json.Marshal(o.Number)
	case OperandText:
		return json.Marshal(o.Text)
	case OperandBool:
		return json.Marshal(o.Bool)
	case OperandTextSet:
		return json.Marshal(o.Texts)
	case OperandField:
		return json.Marshal(struct {
			Field string  `json:"field"`
			Scale float64 `json:"scale"`
		}{o.Field, o.Scale})
	default:
		return nil, fmt.Errorf("unknown operand kind %d", o.Kind)
	}
}

// Predicate is a single clause of the conjunctive filter.
type Predicate struct {
	Field   string   `json:"field"`
	Op      Operator `json:"op"`
	Operand Operand  `json:"operand"`
}

func (p Predicate) String() string {
	return p.Field + " " + p.Op.Symbol() + " " + p.Operand.String()
}

// Query is built fresh for each scan and never modified once returned.
type Query struct {
	Market     string      `json:"market"`
	Fields     []string    `json:"fields"`
	Predicates []Predicate `json:"predicates"`
	Limit      int         `json:"limit"`
	Preset     Preset      `json:"preset,omitempty"`
}

// Clauses renders every predicate in infix form.
func (q Query) Clauses() []string {
	out := make([]string, 0, len(q.Predicates))
	for _, p := range q.Predicates {
		out = append(out, p.String())
	}
	return out
}
