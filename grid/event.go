package grid

// Update records one local cell write queued for the collaboration layer.
// Value is the raw entered text (formulas included verbatim); Timestamp is
// capture time in Unix milliseconds.
type Update struct {
	Row       int
	Column    int
	Value     string
	Timestamp int64
}
