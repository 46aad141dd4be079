package refname

import "testing"

func TestColumnName_RoundTrip(t *testing.T) {
	cases := []struct {
		n    int
		name string
	}{
		{n: 1, name: "A"},
		{n: 2, name: "B"},
		{n: 26, name: "Z"},
		{n: 27, name: "AA"},
		{n: 52, name: "AZ"},
		{n: 53, name: "BA"},
		{n: 702, name: "ZZ"},
		{n: 703, name: "AAA"},
	}

	for _, tc := range cases {
		if got := ColumnName(tc.n); got != tc.name {
			t.Fatalf("ColumnName(%d)=%q, want %q", tc.n, got, tc.name)
		}
		back, ok := ColumnNumber(tc.name)
		if !ok || back != tc.n {
			t.Fatalf("ColumnNumber(%q)=%d,%v, want %d", tc.name, back, ok, tc.n)
		}
	}
}

func TestColumnName_Invalid(t *testing.T) {
	if got := ColumnName(0); got != "" {
		t.Fatalf("ColumnName(0)=%q, want empty", got)
	}
	if got := ColumnName(-3); got != "" {
		t.Fatalf("ColumnName(-3)=%q, want empty", got)
	}
}

func TestColumnNumber_CaseAndErrors(t *testing.T) {
	if n, ok := ColumnNumber("aa"); !ok || n != 27 {
		t.Fatalf("ColumnNumber(aa)=%d,%v, want 27", n, ok)
	}
	for _, bad := range []string{"", "A1", "1A", "-", "é"} {
		if _, ok := ColumnNumber(bad); ok {
			t.Fatalf("ColumnNumber(%q) should fail", bad)
		}
	}
}

func TestFormatParse(t *testing.T) {
	cases := []struct {
		ref      string
		row, col int
	}{
		{ref: "A1", row: 1, col: 1},
		{ref: "B3", row: 3, col: 2},
		{ref: "Z1000", row: 1000, col: 26},
		{ref: "AA12", row: 12, col: 27},
	}

	for _, tc := range cases {
		if got := Format(tc.row, tc.col); got != tc.ref {
			t.Fatalf("Format(%d,%d)=%q, want %q", tc.row, tc.col, got, tc.ref)
		}
		row, col, ok := Parse(tc.ref)
		if !ok || row != tc.row || col != tc.col {
			t.Fatalf("Parse(%q)=%d,%d,%v, want %d,%d", tc.ref, row, col, ok, tc.row, tc.col)
		}
	}
}

func TestParse_Lowercase(t *testing.T) {
	row, col, ok := Parse("b3")
	if !ok || row != 3 || col != 2 {
		t.Fatalf("Parse(b3)=%d,%d,%v, want 3,2,true", row, col, ok)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, bad := range []string{"", "A", "3", "A0", "A-1", "3B", "A1B", "A 1"} {
		if _, _, ok := Parse(bad); ok {
			t.Fatalf("Parse(%q) should fail", bad)
		}
	}
}

func TestFormat_Invalid(t *testing.T) {
	if got := Format(0, 1); got != "" {
		t.Fatalf("Format(0,1)=%q, want empty", got)
	}
	if got := Format(1, 0); got != "" {
		t.Fatalf("Format(1,0)=%q, want empty", got)
	}
}
