package refname

import "strconv"

// ColumnName returns the spreadsheet letter name for a 1-based column
// number ("A", "Z", "AA"). It returns "" for n < 1.
func ColumnName(n int) string {
	if n < 1 {
		return ""
	}
	buf := make([]byte, 0, 3)
	for n > 0 {
		n--
		buf = append(buf, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// ColumnNumber returns the 1-based column number for a letter name.
// Lowercase letters are accepted. It reports false for anything else.
func ColumnNumber(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			n = n*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			n = n*26 + int(c-'a'+1)
		default:
			return 0, false
		}
	}
	return n, true
}

// Format returns the A1-style name for a 1-based row and column ("B3").
func Format(row, col int) string {
	if row < 1 || col < 1 {
		return ""
	}
	return ColumnName(col) + strconv.Itoa(row)
}

// Parse splits an A1-style reference into its 1-based row and column.
// It reports false when ref is not letters followed by digits.
func Parse(ref string) (row, col int, ok bool) {
	split := 0
	for split < len(ref) {
		c := ref[split]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			break
		}
		split++
	}
	if split == 0 || split == len(ref) {
		return 0, 0, false
	}
	col, ok = ColumnNumber(ref[:split])
	if !ok {
		return 0, 0, false
	}
	row, err := strconv.Atoi(ref[split:])
	if err != nil || row < 1 {
		return 0, 0, false
	}
	return row, col, true
}
