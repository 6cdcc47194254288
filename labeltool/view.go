package labeltool

import (
	"github.com/cyclopcam/labeltool/pkg/annotation"
	"github.com/cyclopcam/labeltool/pkg/container"
)

// View is the annotation state of one camera
type View struct {
	Index     int
	Name      string            // Camera folder name
	Model     *annotation.Model // nil until a sequence is loaded
	Container container.Container
	Filename  string // Annotation file of this camera
	current   int    // Current row, or -1
}

func newView(index int, name string) *View {
	return &View{
		Index:   index,
		Name:    name,
		current: -1,
	}
}

// CurrentRow returns the row that the view is showing, or -1
func (v *View) CurrentRow() int {
	return v.current
}

// Current returns the image or frame that the view is showing, or nil
func (v *View) Current() *annotation.Record {
	if v.Model == nil || v.current < 0 {
		return nil
	}
	return v.Model.Row(v.current)
}
