package calib

import (
	"errors"
	"fmt"

	"github.com/cyclopcam/labeltool/pkg/annotation"
)

// Package calib converts annotation boxes between the pixel coordinate systems of
// cameras that look at the same scene with different lenses.

var ErrUnsupportedCameraCount = errors.New("Only 2 or 4 cameras are supported")
var ErrInvalidView = errors.New("Invalid camera view index")

// Anchor is the fixed calibration of one camera view, in a shared world coordinate system
type Anchor struct {
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Scale   float64 `json:"scale"` // Roughly the focal length of the lens, eg 6 for a 6mm lens
}

// DefaultAnchors returns the anchor table for the given number of cameras.
func DefaultAnchors(nCameras int) ([]Anchor, error) {
	switch nCameras {
	case 2:
		return []Anchor{
			{CenterX: 0, CenterY: 0, Scale: 6},
			{CenterX: 15, CenterY: -15, Scale: 25},
		}, nil
	case 4:
		return []Anchor{
			{CenterX: 0, CenterY: 0, Scale: 6},
			{CenterX: 30, CenterY: 5, Scale: 12.5},
			{CenterX: 15, CenterY: -15, Scale: 25},
			{CenterX: 15, CenterY: 0, Scale: 50},
		}, nil
	}
	return nil, fmt.Errorf("%w (got %v)", ErrUnsupportedCameraCount, nCameras)
}

// Calibration converts boxes between views.
// It is immutable after construction.
type Calibration struct {
	width   float64 // Width of the base image
	height  float64 // Height of the base image
	x0      float64 // Scaling reference point X
	y0      float64 // Scaling reference point Y
	anchors []Anchor
}

// New creates a calibration with the default anchors for nCameras.
// width and height are the resolution of the base image, which determines the
// point about which boxes are scaled.
func New(nCameras int, width, height int) (*Calibration, error) {
	anchors, err := DefaultAnchors(nCameras)
	if err != nil {
		return nil, err
	}
	return NewWithAnchors(anchors, width, height)
}

// NewWithAnchors creates a calibration with an explicit anchor table
func NewWithAnchors(anchors []Anchor, width, height int) (*Calibration, error) {
	if len(anchors) == 0 {
		return nil, errors.New("Calibration needs at least one anchor")
	}
	for i, a := range anchors {
		if a.Scale <= 0 {
			return nil, fmt.Errorf("Anchor %v has invalid scale %v", i, a.Scale)
		}
	}
	c := &Calibration{
		width:   float64(width),
		height:  float64(height),
		anchors: append([]Anchor(nil), anchors...),
	}
	c.x0 = c.width/2 - 50
	c.y0 = c.height/2 + 30
	return c, nil
}

// NumViews returns the number of anchors
func (c *Calibration) NumViews() int {
	return len(c.anchors)
}

// Anchor returns the anchor of view i
func (c *Calibration) Anchor(i int) Anchor {
	return c.anchors[i]
}

// Reference returns the point about which boxes are scaled
func (c *Calibration) Reference() (x0, y0 float64) {
	return c.x0, c.y0
}

// Ratio returns the factor by which box sizes change when converting from view 'from' to view 'to'
func (c *Calibration) Ratio(from, to int) (float64, error) {
	if !c.valid(from) || !c.valid(to) {
		return 0, fmt.Errorf("%w: %v -> %v (have %v)", ErrInvalidView, from, to, len(c.anchors))
	}
	return c.anchors[to].Scale / c.anchors[from].Scale, nil
}

// Convert maps the box of 'ann' from view 'from' into view 'to'.
// The box is scaled about the reference point, and then translated by the difference
// in anchor centers. The result is a new annotation; every field other than the box
// is copied from 'ann', which is not modified.
// Degenerate boxes are not rejected.
func (c *Calibration) Convert(ann *annotation.Annotation, from, to int) (*annotation.Annotation, error) {
	ratio, err := c.Ratio(from, to)
	if err != nil {
		return nil, err
	}
	dx := c.anchors[to].CenterX - c.anchors[from].CenterX
	dy := c.anchors[to].CenterY - c.anchors[from].CenterY

	out := ann.Clone()
	cx := ann.X + ann.Width/2
	cy := ann.Y + ann.Height/2

	cx = ratio*(cx-c.x0) + c.x0
	cy = ratio*(cy-c.y0) + c.y0
	w := ann.Width * ratio
	h := ann.Height * ratio

	cx += dx
	cy += dy

	out.X = cx - w/2
	out.Y = cy - h/2
	out.Width = w
	out.Height = h
	return out, nil
}

func (c *Calibration) valid(view int) bool {
	return view >= 0 && view < len(c.anchors)
}
