package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// operand is one parsed term: a scalar value or a range's numeric slice.
// Ranges are only legal as function arguments.
type operand struct {
	v       Value
	nums    []float64
	isRange bool
}

type parser struct {
	ev    *Evaluator
	in    string
	pos   int
	depth int
}

func (p *parser) parseExpr() (operand, error) {
	left, err := p.parseTerm()
	if err != nil {
		return operand{}, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return operand{}, err
		}
		left, err = applyBinary(op, left, right)
		if err != nil {
			return operand{}, err
		}
	}
}

func (p *parser) parseTerm() (operand, error) {
	left, err := p.parseUnary()
	if err != nil {
		return operand{}, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return operand{}, err
		}
		left, err = applyBinary(op, left, right)
		if err != nil {
			return operand{}, err
		}
	}
}

func (p *parser) parseUnary() (operand, error) {
	p.skipSpace()
	switch p.peek() {
	case '-':
		p.pos++
		op, err := p.parseUnary()
		if err != nil {
			return operand{}, err
		}
		n, ok := scalarNum(op)
		if !ok {
			return operand{}, fmt.Errorf("cannot negate a non-number")
		}
		return operand{v: Number(-n)}, nil
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (operand, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return operand{}, err
	}
	p.skipSpace()
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	// Right-associative, and the exponent may itself be signed.
	exp, err := p.parseUnary()
	if err != nil {
		return operand{}, err
	}
	return applyBinary('^', base, exp)
}

func (p *parser) parsePrimary() (operand, error) {
	p.skipSpace()
	if p.pos >= len(p.in) {
		return operand{}, fmt.Errorf("unexpected end of formula")
	}

	c := p.in[p.pos]
	switch {
	case c >= '0' && c <= '9', c == '.':
		return p.parseNumber()
	case c == '"':
		return p.parseString()
	case c == '(':
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return operand{}, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return operand{}, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	case isLetter(c):
		return p.parseIdent()
	default:
		return operand{}, fmt.Errorf("unexpected character %q", string(c))
	}
}

func (p *parser) parseNumber() (operand, error) {
	start := p.pos
	for p.pos < len(p.in) && (isDigit(p.in[p.pos]) || p.in[p.pos] == '.') {
		p.pos++
	}
	if p.pos < len(p.in) && (p.in[p.pos] == 'e' || p.in[p.pos] == 'E') {
		mark := p.pos
		p.pos++
		if p.pos < len(p.in) && (p.in[p.pos] == '+' || p.in[p.pos] == '-') {
			p.pos++
		}
		if p.pos < len(p.in) && isDigit(p.in[p.pos]) {
			for p.pos < len(p.in) && isDigit(p.in[p.pos]) {
				p.pos++
			}
		} else {
			p.pos = mark
		}
	}
	f, err := strconv.ParseFloat(p.in[start:p.pos], 64)
	if err != nil {
		return operand{}, fmt.Errorf("bad number %q", p.in[start:p.pos])
	}
	return operand{v: Number(f)}, nil
}

func (p *parser) parseString() (operand, error) {
	p.pos++ // opening quote
	start := p.pos
	for p.pos < len(p.in) && p.in[p.pos] != '"' {
		p.pos++
	}
	if p.pos >= len(p.in) {
		return operand{}, fmt.Errorf("unterminated string")
	}
	s := p.in[start:p.pos]
	p.pos++ // closing quote
	return operand{v: Text(s)}, nil
}

// parseIdent handles function calls (letters followed immediately by '('),
// cell references (letters followed by digits) and ranges (ref ':' ref).
func (p *parser) parseIdent() (operand, error) {
	letters := p.scanLetters()
	if p.pos < len(p.in) && p.in[p.pos] == '(' {
		return p.parseCall(strings.ToUpper(letters))
	}

	digits := p.scanDigits()
	if digits == "" {
		return operand{}, fmt.Errorf("unknown identifier %q", letters)
	}
	ref := strings.ToUpper(letters) + digits

	p.skipSpace()
	if p.peek() != ':' {
		v, err := p.ev.resolveRef(ref, p.depth)
		if err != nil {
			return operand{}, err
		}
		return operand{v: v}, nil
	}

	p.pos++ // ':'
	p.skipSpace()
	endLetters := p.scanLetters()
	endDigits := p.scanDigits()
	if endLetters == "" || endDigits == "" {
		return operand{}, fmt.Errorf("bad range after %s:", ref)
	}
	endRef := strings.ToUpper(endLetters) + endDigits
	nums, err := p.ev.rangeNums(ref, endRef, p.depth)
	if err != nil {
		return operand{}, err
	}
	return operand{nums: nums, isRange: true}, nil
}

func (p *parser) parseCall(name string) (operand, error) {
	p.pos++ // '('
	var args []operand
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return callBuiltin(p.ev, name, args)
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return operand{}, err
		}
		args = append(args, arg)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return callBuiltin(p.ev, name, args)
		default:
			return operand{}, fmt.Errorf("expected ',' or ')' in %s(...)", name)
		}
	}
}

func (p *parser) scanLetters() string {
	start := p.pos
	for p.pos < len(p.in) && isLetter(p.in[p.pos]) {
		p.pos++
	}
	return p.in[start:p.pos]
}

func (p *parser) scanDigits() string {
	start := p.pos
	for p.pos < len(p.in) && isDigit(p.in[p.pos]) {
		p.pos++
	}
	return p.in[start:p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t') {
		p.pos++
	}
}

// peek returns the current byte or 0 at end of input.
func (p *parser) peek() byte {
	if p.pos >= len(p.in) {
		return 0
	}
	return p.in[p.pos]
}

func applyBinary(op byte, l, r operand) (operand, error) {
	if l.isRange || r.isRange {
		return operand{}, fmt.Errorf("range reference not allowed in arithmetic")
	}
	ln, ok := asNumber(l.v)
	if !ok {
		return operand{}, fmt.Errorf("cannot use %q as a number", l.v.String())
	}
	rn, ok := asNumber(r.v)
	if !ok {
		return operand{}, fmt.Errorf("cannot use %q as a number", r.v.String())
	}

	var out float64
	switch op {
	case '+':
		out = ln + rn
	case '-':
		out = ln - rn
	case '*':
		out = ln * rn
	case '/':
		if rn == 0 {
			return operand{}, fmt.Errorf("division by zero")
		}
		out = ln / rn
	case '%':
		if rn == 0 {
			return operand{}, fmt.Errorf("modulo by zero")
		}
		out = math.Mod(ln, rn)
	case '^':
		out = math.Pow(ln, rn)
	default:
		return operand{}, fmt.Errorf("unknown operator %q", string(op))
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return operand{}, fmt.Errorf("numeric overflow")
	}
	return operand{v: Number(out)}, nil
}

// scalarNum reads an operand as a number for unary minus.
func scalarNum(op operand) (float64, bool) {
	if op.isRange {
		return 0, false
	}
	return asNumber(op.v)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
