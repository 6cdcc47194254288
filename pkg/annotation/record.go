package annotation

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Class of a Record
const (
	ClassImage = "image"
	ClassVideo = "video"
	ClassFrame = "frame"
)

const (
	keyClass       = "class"
	keyFilename    = "filename"
	keyAnnotations = "annotations"
	keyFrames      = "frames"
	keyNum         = "num"
	keyTimestamp   = "timestamp"
	keyUnlabeled   = "unlabeled"
)

// Record is a file (image or video), or a frame inside a video.
// Image files and video frames carry annotations. Video files carry frames.
type Record struct {
	Class       string        // ClassImage, ClassVideo, or ClassFrame
	Filename    string        // Path of the image or video. Empty for frames.
	Annotations []*Annotation // Annotations of an image or frame
	Frames      []*Record     // Frames of a video
	Num         int           // Frame number inside the video (frames only)
	Timestamp   float64       // Frame timestamp (frames only)
	Unlabeled   bool          // True if a human has not yet looked at this image/frame
	Extra       map[string]any
}

// IsImageItem returns true if the record is something that can be displayed and annotated,
// i.e. an image file or a video frame.
func (r *Record) IsImageItem() bool {
	return r.Class == ClassImage || r.Class == ClassFrame
}

// FindByID returns the index of the first annotation with the given ID, or -1
func (r *Record) FindByID(id int64) int {
	for i, a := range r.Annotations {
		if a.HasID(id) {
			return i
		}
	}
	return -1
}

// IndexOf returns the index of 'a' itself (not an equal copy) in the annotations, or -1
func (r *Record) IndexOf(a *Annotation) int {
	return slices.Index(r.Annotations, a)
}

// Upsert replaces the annotation that has the same ID as 'a', or appends 'a' if
// there is no such annotation (or 'a' has no ID).
// Returns true if an existing annotation was replaced.
func (r *Record) Upsert(a *Annotation) bool {
	if a.ID != nil {
		if i := r.FindByID(*a.ID); i != -1 {
			r.Annotations[i] = a
			return true
		}
	}
	r.Annotations = append(r.Annotations, a)
	return false
}

// RemoveByID removes all annotations with the given ID, and returns the number removed
func (r *Record) RemoveByID(id int64) int {
	kept := r.Annotations[:0]
	for _, a := range r.Annotations {
		if !a.HasID(id) {
			kept = append(kept, a)
		}
	}
	n := len(r.Annotations) - len(kept)
	for i := len(kept); i < len(r.Annotations); i++ {
		r.Annotations[i] = nil
	}
	r.Annotations = kept
	return n
}

// ReplaceID changes every annotation with ID oldID to newID.
// Returns the number of annotations changed.
func (r *Record) ReplaceID(oldID, newID int64) int {
	n := 0
	for _, a := range r.Annotations {
		if a.HasID(oldID) {
			a.SetID(newID)
			n++
		}
	}
	return n
}

// CountID returns the number of annotations with the given ID
func (r *Record) CountID(id int64) int {
	n := 0
	for _, a := range r.Annotations {
		if a.HasID(id) {
			n++
		}
	}
	return n
}

// ConfirmAll clears the 'unconfirmed' attribute of every annotation.
// Returns true if anything changed.
func (r *Record) ConfirmAll() bool {
	changed := false
	for _, a := range r.Annotations {
		if _, ok := a.Attributes[AttrUnconfirmed]; ok {
			delete(a.Attributes, AttrUnconfirmed)
			changed = true
		}
	}
	return changed
}

// NumAnnotations returns the number of annotations in this record, including those of its frames
func (r *Record) NumAnnotations() int {
	n := len(r.Annotations)
	for _, f := range r.Frames {
		n += len(f.Annotations)
	}
	return n
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	c := *r
	c.Annotations = make([]*Annotation, len(r.Annotations))
	for i, a := range r.Annotations {
		c.Annotations[i] = a.Clone()
	}
	if r.Frames != nil {
		c.Frames = make([]*Record, len(r.Frames))
		for i, f := range r.Frames {
			c.Frames[i] = f.Clone()
		}
	}
	if r.Extra != nil {
		c.Extra = deepCopyMap(r.Extra)
	}
	return &c
}

// ToMap flattens the record into the generic form that is written to disk
func (r *Record) ToMap() map[string]any {
	m := make(map[string]any, len(r.Extra)+6)
	for k, v := range r.Extra {
		m[k] = v
	}
	m[keyClass] = r.Class
	if r.Filename != "" {
		m[keyFilename] = r.Filename
	}
	if r.Class == ClassVideo {
		frames := make([]any, len(r.Frames))
		for i, f := range r.Frames {
			frames[i] = f.ToMap()
		}
		m[keyFrames] = frames
	} else {
		anns := make([]any, len(r.Annotations))
		for i, a := range r.Annotations {
			anns[i] = a.ToMap()
		}
		m[keyAnnotations] = anns
	}
	if r.Class == ClassFrame {
		m[keyNum] = r.Num
		m[keyTimestamp] = r.Timestamp
	}
	if r.Unlabeled {
		m[keyUnlabeled] = true
	}
	return m
}

// RecordFromMap parses the generic on-disk form of a top level record.
// A record without a class is a video if it has frames, otherwise an image.
func RecordFromMap(m map[string]any) (*Record, error) {
	return recordFromMap(m, ClassImage)
}

// recordFromMap parses a record, giving it defaultClass if it has no class and no frames
func recordFromMap(m map[string]any, defaultClass string) (*Record, error) {
	r := &Record{}
	for k, v := range m {
		ok := true
		switch k {
		case keyClass:
			r.Class, ok = v.(string)
		case keyFilename:
			r.Filename, ok = v.(string)
		case keyAnnotations:
			if v == nil {
				continue
			}
			list, isList := v.([]any)
			if !isList {
				return nil, fmt.Errorf("Field '%v' must be a list, but is %T", k, v)
			}
			for i, item := range list {
				am, isMap := asStringMap(item)
				if !isMap {
					return nil, fmt.Errorf("Annotation %v must be an object, but is %T", i, item)
				}
				a, err := FromMap(am)
				if err != nil {
					return nil, err
				}
				r.Annotations = append(r.Annotations, a)
			}
		case keyFrames:
			if v == nil {
				continue
			}
			list, isList := v.([]any)
			if !isList {
				return nil, fmt.Errorf("Field '%v' must be a list, but is %T", k, v)
			}
			r.Frames = make([]*Record, 0, len(list))
			for i, item := range list {
				fm, isMap := asStringMap(item)
				if !isMap {
					return nil, fmt.Errorf("Frame %v must be an object, but is %T", i, item)
				}
				f, err := recordFromMap(fm, ClassFrame)
				if err != nil {
					return nil, fmt.Errorf("Frame %v: %w", i, err)
				}
				r.Frames = append(r.Frames, f)
			}
		case keyNum:
			var n int64
			n, ok = toInt(v)
			r.Num = int(n)
		case keyTimestamp:
			r.Timestamp, ok = toFloat(v)
		case keyUnlabeled:
			r.Unlabeled, ok = v.(bool)
		default:
			ok = false
		}
		if !ok {
			if r.Extra == nil {
				r.Extra = map[string]any{}
			}
			r.Extra[k] = v
		}
	}
	if r.Class == "" {
		if r.Frames != nil {
			r.Class = ClassVideo
		} else {
			r.Class = defaultClass
		}
	}
	return r, nil
}

// RecordsFromList parses a list of generic records, as produced by a JSON or YAML decoder
func RecordsFromList(list []any) ([]*Record, error) {
	records := make([]*Record, 0, len(list))
	for i, item := range list {
		m, ok := asStringMap(item)
		if !ok {
			return nil, fmt.Errorf("Record %v must be an object, but is %T", i, item)
		}
		r, err := RecordFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("Record %v: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// RecordsToList is the inverse of RecordsFromList
func RecordsToList(records []*Record) []any {
	list := make([]any, len(records))
	for i, r := range records {
		list[i] = r.ToMap()
	}
	return list
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

func (r *Record) UnmarshalJSON(b []byte) error {
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	parsed, err := RecordFromMap(m)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

// YAML decoders may produce map[any]any for nested objects
func asStringMap(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, true
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = val
		}
		return m, true
	}
	return nil, false
}
