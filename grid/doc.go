// Package grid implements the pure per-sheet cell state shared by the
// editor component and the collaboration layer.
//
// Coordinates are 1-based (Row, Col): rows run 1..Bounds.Rows and columns
// 1..Bounds.Cols. Ranges are inclusive rectangles normalized so that Start
// is the top-left corner and End the bottom-right.
package grid
