package grid

// Ref addresses one cell by (Row, Col). Row and Col are 1-based.
type Ref struct {
	Row int
	Col int
}

// Range is an inclusive rectangle of cells. After NormalizeRange, Start is
// the top-left corner and End the bottom-right.
type Range struct {
	Start Ref
	End   Ref
}

// Bounds describes the addressable sheet rectangle: rows 1..Rows and
// columns 1..Cols.
type Bounds struct {
	Rows int
	Cols int
}

// DefaultBounds returns the standard sheet size.
func DefaultBounds() Bounds {
	return Bounds{Rows: 1000, Cols: 26}
}

func (b Bounds) Contains(ref Ref) bool {
	return ref.Row >= 1 && ref.Row <= b.Rows && ref.Col >= 1 && ref.Col <= b.Cols
}

// CompareRef orders refs row-major.
func CompareRef(a, b Ref) int {
	if a.Row < b.Row {
		return -1
	}
	if a.Row > b.Row {
		return 1
	}
	if a.Col < b.Col {
		return -1
	}
	if a.Col > b.Col {
		return 1
	}
	return 0
}

// NormalizeRange reorders r so Start holds the minimum row and column and
// End the maximum. Drag corners may cross on either axis independently.
func NormalizeRange(r Range) Range {
	if r.Start.Row > r.End.Row {
		r.Start.Row, r.End.Row = r.End.Row, r.Start.Row
	}
	if r.Start.Col > r.End.Col {
		r.Start.Col, r.End.Col = r.End.Col, r.Start.Col
	}
	return r
}

// IsSingle reports whether the normalized range covers exactly one cell.
func (r Range) IsSingle() bool {
	n := NormalizeRange(r)
	return n.Start == n.End
}

// Contains reports whether ref falls inside the normalized range.
func (r Range) Contains(ref Ref) bool {
	n := NormalizeRange(r)
	return ref.Row >= n.Start.Row && ref.Row <= n.End.Row &&
		ref.Col >= n.Start.Col && ref.Col <= n.End.Col
}

// Cells returns the number of cells the normalized range covers.
func (r Range) Cells() int {
	n := NormalizeRange(r)
	return (n.End.Row - n.Start.Row + 1) * (n.End.Col - n.Start.Col + 1)
}

func clampInt(v, min, max int) int {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampRef clamps ref into b.
func ClampRef(ref Ref, b Bounds) Ref {
	return Ref{
		Row: clampInt(ref.Row, 1, b.Rows),
		Col: clampInt(ref.Col, 1, b.Cols),
	}
}

// ClampRange clamps both corners of r into b.
func ClampRange(r Range, b Bounds) Range {
	return Range{
		Start: ClampRef(r.Start, b),
		End:   ClampRef(r.End, b),
	}
}
