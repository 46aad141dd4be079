package formula

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

type builtin struct {
	min int
	max int // -1: variadic
	fn  func(e *Evaluator, args []operand) (Value, error)
}

var builtins = map[string]builtin{
	"SUM":         {min: 0, max: -1, fn: fnSum},
	"AVERAGE":     {min: 0, max: -1, fn: fnAverage},
	"AVG":         {min: 0, max: -1, fn: fnAverage},
	"COUNT":       {min: 0, max: -1, fn: fnCount},
	"MAX":         {min: 0, max: -1, fn: fnMax},
	"MIN":         {min: 0, max: -1, fn: fnMin},
	"ABS":         {min: 1, max: 1, fn: fnAbs},
	"ROUND":       {min: 1, max: 2, fn: fnRound},
	"SQRT":        {min: 1, max: 1, fn: fnSqrt},
	"POWER":       {min: 2, max: 2, fn: fnPower},
	"POW":         {min: 2, max: 2, fn: fnPower},
	"IF":          {min: 3, max: 3, fn: fnIf},
	"CONCATENATE": {min: 0, max: -1, fn: fnConcatenate},
	"CONCAT":      {min: 0, max: -1, fn: fnConcatenate},
	"LEN":         {min: 1, max: 1, fn: fnLen},
	"UPPER":       {min: 1, max: 1, fn: fnUpper},
	"LOWER":       {min: 1, max: 1, fn: fnLower},
	"LEFT":        {min: 2, max: 2, fn: fnLeft},
	"RIGHT":       {min: 2, max: 2, fn: fnRight},
	"MID":         {min: 3, max: 3, fn: fnMid},
	"FIND":        {min: 2, max: 3, fn: fnFind},
	"SUBSTITUTE":  {min: 3, max: 4, fn: fnSubstitute},
	"TODAY":       {min: 0, max: 0, fn: fnToday},
	"NOW":         {min: 0, max: 0, fn: fnNow},
}

func callBuiltin(e *Evaluator, name string, args []operand) (operand, error) {
	b, ok := builtins[name]
	if !ok {
		return operand{}, fmt.Errorf("unknown function %s", name)
	}
	if len(args) < b.min || (b.max >= 0 && len(args) > b.max) {
		return operand{}, fmt.Errorf("%s called with %d arguments", name, len(args))
	}
	v, err := b.fn(e, args)
	if err != nil {
		return operand{}, err
	}
	return operand{v: v}, nil
}

// strictNum reads a scalar argument that must already be numeric. String
// arguments do not coerce here.
func strictNum(a operand) (float64, error) {
	if a.isRange {
		return 0, fmt.Errorf("range not allowed here")
	}
	switch a.v.Kind {
	case KindNumber:
		return a.v.Num, nil
	case KindEmpty:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected a number, got %q", a.v.String())
	}
}

// looseNum reads a scalar argument, coercing numeric text ("2" counts).
func looseNum(a operand) (float64, error) {
	if a.isRange {
		return 0, fmt.Errorf("range not allowed here")
	}
	n, ok := asNumber(a.v)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %q", a.v.String())
	}
	return n, nil
}

func looseInt(a operand) (int, error) {
	n, err := looseNum(a)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func scalarText(a operand) (string, error) {
	if a.isRange {
		return "", fmt.Errorf("range not allowed here")
	}
	return a.v.String(), nil
}

// collectNums flattens aggregate arguments: ranges contribute every cell,
// scalar numbers contribute themselves, scalar text is skipped silently.
func collectNums(args []operand) []float64 {
	var out []float64
	for _, a := range args {
		switch {
		case a.isRange:
			out = append(out, a.nums...)
		case a.v.Kind == KindNumber:
			out = append(out, a.v.Num)
		}
	}
	return out
}

func fnSum(_ *Evaluator, args []operand) (Value, error) {
	total := 0.0
	for _, a := range args {
		if a.isRange {
			for _, n := range a.nums {
				total += n
			}
			continue
		}
		n, err := strictNum(a)
		if err != nil {
			return Value{}, err
		}
		total += n
	}
	return Number(total), nil
}

func fnAverage(_ *Evaluator, args []operand) (Value, error) {
	nums := collectNums(args)
	if len(nums) == 0 {
		return Number(0), nil
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return Number(total / float64(len(nums))), nil
}

func fnCount(_ *Evaluator, args []operand) (Value, error) {
	return Number(float64(len(collectNums(args)))), nil
}

func fnMax(_ *Evaluator, args []operand) (Value, error) {
	nums := collectNums(args)
	if len(nums) == 0 {
		return Number(0), nil
	}
	out := nums[0]
	for _, n := range nums[1:] {
		if n > out {
			out = n
		}
	}
	return Number(out), nil
}

func fnMin(_ *Evaluator, args []operand) (Value, error) {
	nums := collectNums(args)
	if len(nums) == 0 {
		return Number(0), nil
	}
	out := nums[0]
	for _, n := range nums[1:] {
		if n < out {
			out = n
		}
	}
	return Number(out), nil
}

func fnAbs(_ *Evaluator, args []operand) (Value, error) {
	n, err := looseNum(args[0])
	if err != nil {
		return Value{}, err
	}
	return Number(math.Abs(n)), nil
}

func fnRound(_ *Evaluator, args []operand) (Value, error) {
	n, err := looseNum(args[0])
	if err != nil {
		return Value{}, err
	}
	decimals := 0
	if len(args) == 2 {
		if decimals, err = looseInt(args[1]); err != nil {
			return Value{}, err
		}
	}
	// Round half to even, matching the sheet's historical behavior.
	shift := math.Pow(10, float64(decimals))
	return Number(math.RoundToEven(n*shift) / shift), nil
}

func fnSqrt(_ *Evaluator, args []operand) (Value, error) {
	n, err := looseNum(args[0])
	if err != nil {
		return Value{}, err
	}
	if n < 0 {
		return Value{}, fmt.Errorf("SQRT of negative number")
	}
	return Number(math.Sqrt(n)), nil
}

func fnPower(_ *Evaluator, args []operand) (Value, error) {
	base, err := looseNum(args[0])
	if err != nil {
		return Value{}, err
	}
	exp, err := looseNum(args[1])
	if err != nil {
		return Value{}, err
	}
	out := math.Pow(base, exp)
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return Value{}, fmt.Errorf("numeric overflow")
	}
	return Number(out), nil
}

func fnIf(_ *Evaluator, args []operand) (Value, error) {
	if args[0].isRange {
		return Value{}, fmt.Errorf("range not allowed as IF condition")
	}
	cond := false
	switch args[0].v.Kind {
	case KindNumber:
		cond = args[0].v.Num != 0
	case KindText:
		cond = strings.EqualFold(args[0].v.Text, "true")
	}
	pick := args[2]
	if cond {
		pick = args[1]
	}
	if pick.isRange {
		return Value{}, fmt.Errorf("range not allowed as IF result")
	}
	return pick.v, nil
}

func fnConcatenate(_ *Evaluator, args []operand) (Value, error) {
	var sb strings.Builder
	for _, a := range args {
		s, err := scalarText(a)
		if err != nil {
			return Value{}, err
		}
		sb.WriteString(s)
	}
	return Text(sb.String()), nil
}

func fnLen(_ *Evaluator, args []operand) (Value, error) {
	s, err := scalarText(args[0])
	if err != nil {
		return Value{}, err
	}
	return Number(float64(utf8.RuneCountInString(s))), nil
}

func fnUpper(_ *Evaluator, args []operand) (Value, error) {
	s, err := scalarText(args[0])
	if err != nil {
		return Value{}, err
	}
	return Text(strings.ToUpper(s)), nil
}

func fnLower(_ *Evaluator, args []operand) (Value, error) {
	s, err := scalarText(args[0])
	if err != nil {
		return Value{}, err
	}
	return Text(strings.ToLower(s)), nil
}

func fnLeft(_ *Evaluator, args []operand) (Value, error) {
	s, err := scalarText(args[0])
	if err != nil {
		return Value{}, err
	}
	n, err := looseInt(args[1])
	if err != nil {
		return Value{}, err
	}
	runes := []rune(s)
	if n <= 0 {
		return Text(""), nil
	}
	if n > len(runes) {
		n = len(runes)
	}
	return Text(string(runes[:n])), nil
}

func fnRight(_ *Evaluator, args []operand) (Value, error) {
	s, err := scalarText(args[0])
	if err != nil {
		return Value{}, err
	}
	n, err := looseInt(args[1])
	if err != nil {
		return Value{}, err
	}
	runes := []rune(s)
	if n <= 0 {
		return Text(""), nil
	}
	if n > len(runes) {
		n = len(runes)
	}
	return Text(string(runes[len(runes)-n:])), nil
}

func fnMid(_ *Evaluator, args []operand) (Value, error) {
	s, err := scalarText(args[0])
	if err != nil {
		return Value{}, err
	}
	start, err := looseInt(args[1])
	if err != nil {
		return Value{}, err
	}
	n, err := looseInt(args[2])
	if err != nil {
		return Value{}, err
	}
	runes := []rune(s)
	start-- // 1-based
	if start < 0 || start >= len(runes) || n <= 0 {
		return Text(""), nil
	}
	end := start + n
	if end > len(runes) {
		end = len(runes)
	}
	return Text(string(runes[start:end])), nil
}

func fnFind(_ *Evaluator, args []operand) (Value, error) {
	needle, err := scalarText(args[0])
	if err != nil {
		return Value{}, err
	}
	haystack, err := scalarText(args[1])
	if err != nil {
		return Value{}, err
	}
	start := 1
	if len(args) == 3 {
		if start, err = looseInt(args[2]); err != nil {
			return Value{}, err
		}
	}
	runes := []rune(haystack)
	skip := start - 1
	if skip < 0 {
		skip = 0
	}
	if skip > len(runes) {
		skip = len(runes)
	}
	idx := strings.Index(string(runes[skip:]), needle)
	if idx < 0 {
		return Number(-1), nil
	}
	// 1-based position in rune terms.
	pos := skip + utf8.RuneCountInString(string(runes[skip:])[:idx]) + 1
	return Number(float64(pos)), nil
}

func fnSubstitute(_ *Evaluator, args []operand) (Value, error) {
	text, err := scalarText(args[0])
	if err != nil {
		return Value{}, err
	}
	oldText, err := scalarText(args[1])
	if err != nil {
		return Value{}, err
	}
	newText, err := scalarText(args[2])
	if err != nil {
		return Value{}, err
	}
	if len(args) == 3 {
		return Text(strings.ReplaceAll(text, oldText, newText)), nil
	}

	instance, err := looseInt(args[3])
	if err != nil {
		return Value{}, err
	}
	if oldText == "" {
		return Value{}, fmt.Errorf("SUBSTITUTE instance needs non-empty search text")
	}
	parts := strings.Split(text, oldText)
	if instance < 1 || instance > len(parts)-1 {
		return Text(text), nil
	}
	return Text(strings.Join(parts[:instance], oldText) + newText + strings.Join(parts[instance:], oldText)), nil
}

func fnToday(e *Evaluator, _ []operand) (Value, error) {
	return Text(e.clock.Now().Format("2006-01-02")), nil
}

func fnNow(e *Evaluator, _ []operand) (Value, error) {
	return Text(e.clock.Now().Format("2006-01-02 15:04:05")), nil
}
