// Package editor provides a Bubble Tea spreadsheet component backed by the
// grid package.
//
// The package is responsible for input dispatch (a navigate/edit two-state
// machine), range selection via keyboard and mouse, the offset-tuple
// clipboard engine, window scrolling, and host integration hooks (cell-update
// and cursor-move callbacks, remote collaborator cursors, formula display).
package editor
