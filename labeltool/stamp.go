package labeltool

import "github.com/cyclopcam/labeltool/pkg/gen"

// StampIndex divides the rows of a sequence into chunks of Size rows, for coarse navigation.
// It holds no state other than the chunk size.
type StampIndex struct {
	Size int
}

// Row returns the first row of stamp k, or 0 if that row would be beyond the end
func (s StampIndex) Row(k, rowCount int) int {
	row := k * s.Size
	if row < 0 || row >= rowCount {
		return 0
	}
	return row
}

// Next returns the first row of the stamp after the one containing 'row'.
// Goes back to 0 after the last stamp.
func (s StampIndex) Next(row, rowCount int) int {
	next := (gen.FloorDiv(row, s.Size) + 1) * s.Size
	if next >= rowCount {
		return 0
	}
	return next
}

// Previous returns the stamp boundary before 'row'. From inside a stamp, this is the
// start of the same stamp. From the very first row, it wraps to the last stamp.
func (s StampIndex) Previous(row, rowCount int) int {
	prev := gen.FloorDiv(row-1, s.Size) * s.Size
	if prev < 0 {
		last := max(rowCount-1, 0)
		prev = gen.FloorDiv(last, s.Size) * s.Size
	}
	return prev
}

// Window returns the rows [start, end) of the stamp that contains 'row'.
// end is limited to rowCount-1, so the final row of a sequence is never part of a window.
func (s StampIndex) Window(row, rowCount int) (start, end int) {
	start = gen.FloorDiv(max(row, 0), s.Size) * s.Size
	end = min(start+s.Size, rowCount-1)
	return
}
