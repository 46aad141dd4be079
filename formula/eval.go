package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/pixelsheets/gridsync/internal/refname"
)

// Source resolves A1-style references ("B3") to raw cell text. Missing
// cells report false and evaluate as zero.
type Source interface {
	CellText(ref string) (string, bool)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ref string) (string, bool)

func (f SourceFunc) CellText(ref string) (string, bool) { return f(ref) }

const (
	defaultRefDepth = 64
	maxRangeCells   = 100000
)

type Opt func(*Evaluator)

// WithClock overrides the clock behind TODAY and NOW.
func WithClock(clock clockwork.Clock) Opt {
	return func(e *Evaluator) {
		e.clock = clock
	}
}

// WithRefDepth bounds transitive formula-reference resolution. Chains
// deeper than n resolve to zero.
func WithRefDepth(n int) Opt {
	return func(e *Evaluator) {
		if n > 0 {
			e.refDepth = n
		}
	}
}

// Evaluator evaluates formulas against one Source.
type Evaluator struct {
	src      Source
	clock    clockwork.Clock
	refDepth int
}

func New(src Source, opts ...Opt) *Evaluator {
	e := &Evaluator{
		src:      src,
		clock:    clockwork.NewRealClock(),
		refDepth: defaultRefDepth,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate evaluates raw cell text. Text without a leading '=' passes
// through unchanged; failures come back as error values, never panics.
func (e *Evaluator) Evaluate(formula string) Value {
	return e.eval(formula, e.refDepth)
}

// Evaluate evaluates formula against src with default options.
func Evaluate(formula string, src Source) Value {
	return New(src).Evaluate(formula)
}

func (e *Evaluator) eval(formula string, depth int) Value {
	if !strings.HasPrefix(formula, "=") {
		return Text(formula)
	}
	expr := strings.TrimSpace(formula[1:])
	if expr == "" {
		return Value{}
	}

	p := &parser{ev: e, in: expr, depth: depth}
	op, err := p.parseExpr()
	if err != nil {
		return Errorf("%s", err)
	}
	p.skipSpace()
	if p.pos < len(p.in) {
		return Errorf("unexpected %q", p.in[p.pos:])
	}
	if op.isRange {
		return Errorf("range reference needs a function around it")
	}
	return op.v
}

// resolveRef resolves one cell reference the way the sheet does: missing or
// empty cells are zero, formula cells evaluate transitively, numeric text
// becomes a number, anything else stays text.
func (e *Evaluator) resolveRef(ref string, depth int) (Value, error) {
	if e.src == nil {
		return Number(0), nil
	}
	raw, ok := e.src.CellText(ref)
	if !ok || raw == "" {
		return Number(0), nil
	}
	if strings.HasPrefix(raw, "=") {
		if depth <= 0 {
			return Number(0), nil
		}
		v := e.eval(raw, depth-1)
		if v.IsError() {
			return Value{}, fmt.Errorf("%s: %s", ref, v.Text)
		}
		if v.Kind == KindEmpty {
			return Number(0), nil
		}
		return v, nil
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return Number(f), nil
	}
	return Text(raw), nil
}

// rangeNums collects every cell of a rectangular range as numbers. Missing
// and non-numeric cells count as zero; formula cells evaluate transitively.
func (e *Evaluator) rangeNums(startRef, endRef string, depth int) ([]float64, error) {
	r1, c1, ok := refname.Parse(startRef)
	if !ok {
		return nil, fmt.Errorf("bad range corner %q", startRef)
	}
	r2, c2, ok := refname.Parse(endRef)
	if !ok {
		return nil, fmt.Errorf("bad range corner %q", endRef)
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if (r2-r1+1)*(c2-c1+1) > maxRangeCells {
		return nil, fmt.Errorf("range %s:%s too large", startRef, endRef)
	}

	nums := make([]float64, 0, (r2-r1+1)*(c2-c1+1))
	for row := r1; row <= r2; row++ {
		for col := c1; col <= c2; col++ {
			nums = append(nums, e.cellNum(refname.Format(row, col), depth))
		}
	}
	return nums, nil
}

func (e *Evaluator) cellNum(ref string, depth int) float64 {
	if e.src == nil {
		return 0
	}
	raw, ok := e.src.CellText(ref)
	if !ok || raw == "" {
		return 0
	}
	if strings.HasPrefix(raw, "=") {
		if depth <= 0 {
			return 0
		}
		if v := e.eval(raw, depth-1); v.Kind == KindNumber {
			return v.Num
		}
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return f
}
