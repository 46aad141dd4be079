package formula

import (
	"fmt"
	"math"
	"strconv"
)

// Kind classifies an evaluation result.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindError
)

// Value is one evaluation result. Num is set for KindNumber, Text for
// KindText and for the error message of KindError.
type Value struct {
	Kind Kind
	Num  float64
	Text string
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Errorf returns an error value with a formatted message.
func Errorf(format string, args ...any) Value {
	return Value{Kind: KindError, Text: fmt.Sprintf(format, args...)}
}

func (v Value) IsError() bool {
	return v.Kind == KindError
}

// String renders the value as cell display text. Whole numbers drop their
// fractional part ("5", not "5.000000"); errors render "#ERROR: msg".
func (v Value) String() string {
	switch v.Kind {
	case KindEmpty:
		return ""
	case KindNumber:
		return formatNumber(v.Num)
	case KindError:
		return "#ERROR: " + v.Text
	default:
		return v.Text
	}
}

func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "#ERROR: numeric overflow"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// asNumber coerces a value for arithmetic. Numeric text coerces; other text
// does not.
func asNumber(v Value) (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindEmpty:
		return 0, true
	case KindText:
		f, err := strconv.ParseFloat(v.Text, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
