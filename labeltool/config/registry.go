package config

import (
	"fmt"

	"github.com/cyclopcam/labeltool/pkg/annotation"
)

// IDSource hands out new object IDs for a label class
type IDSource interface {
	NextID(class string) int64
}

// Inserter creates a new annotation of a label class, from a box that the user has drawn
type Inserter interface {
	NewAnnotation(label *Label, x, y, width, height float64, ids IDSource) *annotation.Annotation
}

// RectInserter creates boxes without an ID
type RectInserter struct{}

func (RectInserter) NewAnnotation(label *Label, x, y, width, height float64, ids IDSource) *annotation.Annotation {
	return annotation.NewBox(label.Class, x, y, width, height)
}

// IDRectInserter creates boxes with a fresh ID for the label class
type IDRectInserter struct{}

func (IDRectInserter) NewAnnotation(label *Label, x, y, width, height float64, ids IDSource) *annotation.Annotation {
	a := annotation.NewBox(label.Class, x, y, width, height)
	a.SetID(ids.NextID(label.Class))
	return a
}

// Registry maps inserter names to implementations
type Registry struct {
	inserters map[string]Inserter
}

// DefaultRegistry knows the built-in inserters
func DefaultRegistry() *Registry {
	r := &Registry{inserters: map[string]Inserter{}}
	r.Register("RectItemInserter", RectInserter{})
	r.Register("IDRectItemInserter", IDRectInserter{})
	return r
}

// Register adds or replaces an inserter
func (r *Registry) Register(name string, ins Inserter) {
	r.inserters[name] = ins
}

// ResolveInserters looks up the inserter of every label, returning a map from label class to inserter.
// Labels without an inserter get a RectInserter. An unknown inserter name is an error.
func (r *Registry) ResolveInserters(labels []Label) (map[string]Inserter, error) {
	resolved := map[string]Inserter{}
	for _, l := range labels {
		if l.Inserter == "" {
			resolved[l.Class] = RectInserter{}
			continue
		}
		ins, ok := r.inserters[l.Inserter]
		if !ok {
			return nil, fmt.Errorf("Unknown inserter '%v' for label '%v'", l.Inserter, l.Class)
		}
		resolved[l.Class] = ins
	}
	return resolved, nil
}
