package grid

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes the sheet as dense CSV rows from (1,1) through the last
// used row and column, raw values with empty strings for gaps. An empty
// sheet writes nothing.
func (g *Grid) WriteCSV(w io.Writer) error {
	ext, ok := g.UsedExtent()
	if !ok {
		return nil
	}

	cw := csv.NewWriter(w)
	record := make([]string, ext.End.Col)
	for row := 1; row <= ext.End.Row; row++ {
		for i := range record {
			record[i] = ""
			if c, ok := g.Cell(row, i+1); ok {
				record[i] = c.Value
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
