package labeltool

import "github.com/cyclopcam/labeltool/pkg/annotation"

// All navigation is all-or-nothing: the target row of every view is computed first, and
// only if every view has a valid target are the views moved. Navigation before a sequence
// is loaded does nothing. Every Goto function returns true if the views moved.

// GotoNext moves every view 'step' rows forward.
// A view without a current row starts from its first row.
func (lt *LabelTool) GotoNext(step int) bool {
	if step <= 0 {
		step = 1
	}
	if !lt.Loaded() {
		return false
	}
	next := make([]int, len(lt.views))
	for i, v := range lt.views {
		from := v.current
		offset := step
		if from < 0 {
			first, ok := v.Model.First()
			if !ok {
				return false
			}
			from = first
			offset = step - 1
		}
		row, ok := v.Model.Sibling(from, offset)
		if !ok {
			return false
		}
		next[i] = row
	}
	lt.keepAnnos = true
	lt.commitRows(next)
	lt.keepAnnos = false
	return true
}

// GotoPrevious moves every view 'step' rows back.
// Every view must already have a current row.
func (lt *LabelTool) GotoPrevious(step int) bool {
	if step <= 0 {
		step = 1
	}
	if !lt.Loaded() {
		return false
	}
	prev := make([]int, len(lt.views))
	for i, v := range lt.views {
		if v.current < 0 {
			return false
		}
		row, ok := v.Model.Sibling(v.current, -step)
		if !ok {
			return false
		}
		prev[i] = row
	}
	lt.commitRows(prev)
	return true
}

// GotoIndex moves every view to the same row
func (lt *LabelTool) GotoIndex(row, column int) bool {
	if !lt.Loaded() {
		return false
	}
	rows := make([]int, len(lt.views))
	for i, v := range lt.views {
		if !v.Model.ValidIndex(row, column) {
			return false
		}
		rows[i] = row
	}
	lt.commitRows(rows)
	return true
}

// GotoStampIndex moves to the first row of stamp k
func (lt *LabelTool) GotoStampIndex(k int) bool {
	if !lt.Loaded() {
		return false
	}
	return lt.GotoIndex(lt.stamps.Row(k, lt.RowCount()), 0)
}

// GotoNextStamp moves to the start of the next stamp, wrapping to the first row after the last stamp
func (lt *LabelTool) GotoNextStamp() bool {
	if !lt.Loaded() {
		return false
	}
	return lt.GotoIndex(lt.stamps.Next(lt.curRow, lt.RowCount()), 0)
}

// GotoPreviousStamp moves to the previous stamp boundary, wrapping to the last stamp from the first row
func (lt *LabelTool) GotoPreviousStamp() bool {
	if !lt.Loaded() {
		return false
	}
	return lt.GotoIndex(lt.stamps.Previous(lt.curRow, lt.RowCount()), 0)
}

func (lt *LabelTool) commitRows(rows []int) {
	for i, v := range lt.views {
		v.current = rows[i]
	}
	lt.curRow = lt.views[0].current
	lt.events.SendEvent(CurrentChanged{Row: lt.curRow, KeepAnnotations: lt.keepAnnos})
}

// KeepAnnotations is true while the views are moving to the next frame.
// Observers of CurrentChanged may use it to carry annotations over to the new frame.
func (lt *LabelTool) KeepAnnotations() bool {
	return lt.keepAnnos
}

// CurrentRow returns the row of the first view, or -1
func (lt *LabelTool) CurrentRow() int {
	return lt.curRow
}

// CurrentRecord returns the current image or frame of 'view', or nil
func (lt *LabelTool) CurrentRecord(view int) *annotation.Record {
	v := lt.View(view)
	if v == nil {
		return nil
	}
	return v.Current()
}

// CurrentRecords returns the current image or frame of every view. Entries may be nil.
func (lt *LabelTool) CurrentRecords() []*annotation.Record {
	recs := make([]*annotation.Record, len(lt.views))
	for i, v := range lt.views {
		recs[i] = v.Current()
	}
	return recs
}
