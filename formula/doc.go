// Package formula evaluates spreadsheet formulas as a pure function from
// raw cell text to a typed value.
//
// Supported: arithmetic (+ - * / % ^), parentheses, numeric and string
// literals, A1-style cell references, rectangular ranges as function
// arguments, and the built-in function set (SUM, AVERAGE, COUNT, MAX, MIN,
// ABS, ROUND, SQRT, POWER, IF, CONCATENATE, LEN, UPPER, LOWER, LEFT, RIGHT,
// MID, FIND, SUBSTITUTE, TODAY, NOW). Failures never panic: they surface as
// error values rendered "#ERROR: ...".
//
// References resolve through a Source. A referenced cell that itself holds
// a formula is evaluated transitively; reference chains deeper than the
// evaluator's depth limit resolve to zero, so cycles terminate.
package formula
