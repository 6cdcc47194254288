package annotation

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
)

// Keys of the fields that Annotation understands. Everything else is kept in Attributes.
const (
	KeyX      = "x"
	KeyY      = "y"
	KeyWidth  = "width"
	KeyHeight = "height"
	KeyID     = "ID"
	KeyClass  = "class"
)

// Attribute that marks an annotation which has not yet been confirmed by a human
const AttrUnconfirmed = "unconfirmed"

// Annotation is a single labelled object inside an image or video frame.
// The box is axis aligned, in pixels, with X,Y being the top-left corner.
// Width and Height are expected to be non-negative, but this is not enforced.
type Annotation struct {
	X          float64
	Y          float64
	Width      float64
	Height     float64
	ID         *int64         // Object identity. nil if the annotation has no ID.
	Class      string         // eg "Vehicle", "Pedestrian"
	Attributes map[string]any // Free-form attributes, preserved on load/save
}

// NewBox creates an annotation with the given class and box, and no ID.
func NewBox(class string, x, y, width, height float64) *Annotation {
	return &Annotation{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		Class:  class,
	}
}

// HasID returns true if the annotation has an ID equal to id
func (a *Annotation) HasID(id int64) bool {
	return a.ID != nil && *a.ID == id
}

// SetID assigns a new ID to the annotation.
func (a *Annotation) SetID(id int64) {
	a.ID = &id
}

func (a *Annotation) CenterX() float64 {
	return a.X + a.Width/2
}

func (a *Annotation) CenterY() float64 {
	return a.Y + a.Height/2
}

// Contains returns true if the point (x,y) is inside the box (edges inclusive)
func (a *Annotation) Contains(x, y float64) bool {
	x1, x2 := math.Min(a.X, a.X+a.Width), math.Max(a.X, a.X+a.Width)
	y1, y2 := math.Min(a.Y, a.Y+a.Height), math.Max(a.Y, a.Y+a.Height)
	return x >= x1 && x <= x2 && y >= y1 && y <= y2
}

// Clone returns a deep copy of the annotation
func (a *Annotation) Clone() *Annotation {
	c := *a
	if a.ID != nil {
		id := *a.ID
		c.ID = &id
	}
	if a.Attributes != nil {
		c.Attributes = deepCopyMap(a.Attributes)
	}
	return &c
}

// ToMap flattens the annotation into the generic form that is written to disk
func (a *Annotation) ToMap() map[string]any {
	m := make(map[string]any, len(a.Attributes)+6)
	for k, v := range a.Attributes {
		m[k] = v
	}
	m[KeyX] = a.X
	m[KeyY] = a.Y
	m[KeyWidth] = a.Width
	m[KeyHeight] = a.Height
	if a.ID != nil {
		m[KeyID] = *a.ID
	}
	if a.Class != "" {
		m[KeyClass] = a.Class
	}
	return m
}

// FromMap parses the generic on-disk form of an annotation.
// Values that can't be interpreted (eg a non-numeric ID) are preserved as attributes.
func FromMap(m map[string]any) (*Annotation, error) {
	a := &Annotation{}
	for k, v := range m {
		var ok bool
		switch k {
		case KeyX:
			a.X, ok = toFloat(v)
		case KeyY:
			a.Y, ok = toFloat(v)
		case KeyWidth:
			a.Width, ok = toFloat(v)
		case KeyHeight:
			a.Height, ok = toFloat(v)
		case KeyID:
			var id int64
			if id, ok = toInt(v); ok {
				a.ID = &id
			}
		case KeyClass:
			a.Class, ok = v.(string)
		}
		if !ok {
			if a.Attributes == nil {
				a.Attributes = map[string]any{}
			}
			a.Attributes[k] = v
		}
	}
	return a, nil
}

func (a *Annotation) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToMap())
}

func (a *Annotation) UnmarshalJSON(b []byte) error {
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	parsed, err := FromMap(m)
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}

func (a *Annotation) String() string {
	id := "-"
	if a.ID != nil {
		id = strconv.FormatInt(*a.ID, 10)
	}
	return fmt.Sprintf("%v#%v [%.1f,%.1f %.1fx%.1f]", a.Class, id, a.X, a.Y, a.Width, a.Height)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case uint64:
		return int64(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		i, err := x.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(x, 10, 64)
		return i, err == nil
	}
	return 0, false
}

func deepCopyMap(m map[string]any) map[string]any {
	c := maps.Clone(m)
	for k, v := range c {
		c[k] = deepCopyValue(v)
	}
	return c
}

func deepCopyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return deepCopyMap(x)
	case []any:
		c := make([]any, len(x))
		for i := range x {
			c[i] = deepCopyValue(x[i])
		}
		return c
	}
	return v
}
