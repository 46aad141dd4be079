package grid

import (
	"strconv"
	"strings"
)

// DataType classifies a cell's raw value.
type DataType string

const (
	TypeText    DataType = "text"
	TypeNumber  DataType = "number"
	TypeFormula DataType = "formula"
)

// Cell is one stored grid cell. Value always holds the raw entered text;
// Formula is non-empty exactly when DataType is TypeFormula and then equals
// Value. Formatting is an opaque style record carried through storage and
// the wire untouched.
type Cell struct {
	Row        int               `json:"row"`
	Column     int               `json:"column"`
	Value      string            `json:"value"`
	Formula    string            `json:"formula,omitempty"`
	DataType   DataType          `json:"data_type"`
	Formatting map[string]string `json:"formatting,omitempty"`
}

// Infer classifies raw input: a leading '=' makes a formula, parseable
// numeric text a number, everything else text. The returned formula is the
// raw text for formulas and "" otherwise.
func Infer(value string) (DataType, string) {
	if strings.HasPrefix(value, "=") {
		return TypeFormula, value
	}
	if value != "" {
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return TypeNumber, ""
		}
	}
	return TypeText, ""
}

// NewCell builds a cell at (row, col) from raw text, inferring its type.
func NewCell(row, col int, value string) Cell {
	dt, formula := Infer(value)
	return Cell{
		Row:      row,
		Column:   col,
		Value:    value,
		Formula:  formula,
		DataType: dt,
	}
}
