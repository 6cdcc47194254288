package annotation

// Model is the annotation hierarchy of one camera view: files, frames of video files,
// and the annotations of each image/frame.
//
// The model exposes a flat row index over its image items: every image file and every
// frame of every video, in file order. Models of different cameras that have the same
// number of frames can be addressed with the same row.
//
// Model is not safe for concurrent use.
type Model struct {
	files          []*Record
	rows           []rowRef
	counts         []int // cached NumAnnotations() per file, -1 = unknown
	dirty          bool
	onDirtyChanged func(dirty bool)
}

type rowRef struct {
	file  int
	frame int // -1 for image files
}

// Number of columns in a row: the filename, and the annotation count
const ColumnCount = 2

// NewModel creates a model that takes ownership of 'files'.
func NewModel(files []*Record) *Model {
	m := &Model{
		files: files,
	}
	m.rebuildRows()
	return m
}

func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	for i, f := range m.files {
		if f.Class == ClassVideo {
			for j := range f.Frames {
				m.rows = append(m.rows, rowRef{file: i, frame: j})
			}
		} else {
			m.rows = append(m.rows, rowRef{file: i, frame: -1})
		}
	}
	for len(m.counts) < len(m.files) {
		m.counts = append(m.counts, -1)
	}
}

// Files returns the top level records. This is what gets persisted.
func (m *Model) Files() []*Record {
	return m.files
}

// RowCount returns the number of image items (image files plus video frames)
func (m *Model) RowCount() int {
	return len(m.rows)
}

// ValidIndex returns true if (row, column) addresses an item of the model
func (m *Model) ValidIndex(row, column int) bool {
	return row >= 0 && row < len(m.rows) && column >= 0 && column < ColumnCount
}

// Row returns the image file or video frame at 'row', or nil if row is out of range
func (m *Model) Row(row int) *Record {
	if row < 0 || row >= len(m.rows) {
		return nil
	}
	ref := m.rows[row]
	f := m.files[ref.file]
	if ref.frame == -1 {
		return f
	}
	return f.Frames[ref.frame]
}

// Parent returns the video file that owns the frame at 'row'.
// For image files (and invalid rows), the result is nil.
func (m *Model) Parent(row int) *Record {
	if row < 0 || row >= len(m.rows) || m.rows[row].frame == -1 {
		return nil
	}
	return m.files[m.rows[row].file]
}

// Sibling returns the row that is 'step' rows away from 'row' (step may be negative).
// If there is no such row, ok is false.
func (m *Model) Sibling(row, step int) (sibling int, ok bool) {
	if row < 0 || row >= len(m.rows) {
		return -1, false
	}
	sibling = row + step
	if sibling < 0 || sibling >= len(m.rows) {
		return -1, false
	}
	return sibling, true
}

// First returns the first row, or false if the model is empty
func (m *Model) First() (int, bool) {
	if len(m.rows) == 0 {
		return -1, false
	}
	return 0, true
}

// Dirty returns true if the model has changed since it was last saved
func (m *Model) Dirty() bool {
	return m.dirty
}

// SetDirty sets the dirty flag. The callback from OnDirtyChanged is invoked if the flag changes.
func (m *Model) SetDirty(dirty bool) {
	if m.dirty == dirty {
		return
	}
	m.dirty = dirty
	if m.onDirtyChanged != nil {
		m.onDirtyChanged(dirty)
	}
}

// OnDirtyChanged registers a function that is called whenever the dirty flag changes
func (m *Model) OnDirtyChanged(f func(dirty bool)) {
	m.onDirtyChanged = f
}

// MarkModified must be called after the annotations of 'row' have been changed.
// It invalidates cached counts and marks the model dirty.
func (m *Model) MarkModified(row int) {
	if row >= 0 && row < len(m.rows) {
		m.counts[m.rows[row].file] = -1
	}
	m.SetDirty(true)
}

// AppendFile adds a new image or video file to the end of the model.
// Returns the row of the file's first image item, or -1 if the file has no image items
// (eg a video without frames).
func (m *Model) AppendFile(f *Record) int {
	before := len(m.rows)
	m.files = append(m.files, f)
	m.rebuildRows()
	m.SetDirty(true)
	if len(m.rows) == before {
		return -1
	}
	return before
}

// NumFiles returns the number of top level files
func (m *Model) NumFiles() int {
	return len(m.files)
}

// NumAnnotations returns the total number of annotations in the model.
// Counts that have not yet been cached are computed now.
func (m *Model) NumAnnotations() int {
	total := 0
	for i := range m.files {
		total += m.CountFile(i)
	}
	return total
}

// CountFile returns the number of annotations in file i, computing and caching it if necessary.
func (m *Model) CountFile(i int) int {
	if m.counts[i] < 0 {
		m.counts[i] = m.files[i].NumAnnotations()
	}
	return m.counts[i]
}

// CachedCount returns the cached annotation count of file i, if it is known
func (m *Model) CachedCount(i int) (int, bool) {
	if i < 0 || i >= len(m.counts) || m.counts[i] < 0 {
		return 0, false
	}
	return m.counts[i], true
}

// InvalidateCounts forgets all cached counts
func (m *Model) InvalidateCounts() {
	for i := range m.counts {
		m.counts[i] = -1
	}
}
