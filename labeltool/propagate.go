package labeltool

import (
	"fmt"

	"github.com/cyclopcam/labeltool/pkg/annotation"
	"github.com/cyclopcam/labeltool/pkg/calib"
	"github.com/cyclopcam/labeltool/pkg/container"
)

// Calibration returns the cross-view transform, creating it if necessary
func (lt *LabelTool) Calibration() (*calib.Calibration, error) {
	if lt.calib == nil {
		lt.seedCalibration()
	}
	if lt.calib == nil {
		return nil, fmt.Errorf("Unable to create calibration for %v views", len(lt.views))
	}
	return lt.calib, nil
}

// seedCalibration builds the calibration from the resolution of the first frame of the first view.
// If that frame can't be read, the configured resolution is used.
func (lt *LabelTool) seedCalibration() {
	width, height := lt.cfg.ImageWidth, lt.cfg.ImageHeight
	if w, h, err := lt.firstFrameSize(); err == nil {
		width, height = w, h
	} else {
		lt.Log.Debugf("Using configured resolution %vx%v: %v", width, height, err)
	}
	c, err := calib.NewWithAnchors(lt.anchors, width, height)
	if err != nil {
		lt.Log.Errorf("Failed to create calibration: %v", err)
		return
	}
	lt.calib = c
}

func (lt *LabelTool) firstFrameSize() (width, height int, err error) {
	if len(lt.views) == 0 || lt.views[0].Model == nil {
		return 0, 0, ErrNotLoaded
	}
	v := lt.views[0]
	first, ok := v.Model.First()
	if !ok {
		return 0, 0, fmt.Errorf("View %v is empty", v.Index)
	}
	rec := v.Model.Row(first)
	if rec.Class == annotation.ClassFrame {
		parent := v.Model.Parent(first)
		return lt.frames.FrameSize(container.ResolvePath(v.Filename, parent.Filename), rec.Num)
	}
	return lt.frames.ImageSize(container.ResolvePath(v.Filename, rec.Filename))
}

// Propagate copies an annotation of the current frame of 'source' into the current frame of
// every other view, through the calibration. If the target frame already has an object with the
// same ID, it is replaced, otherwise the converted annotation is appended.
// Views without a current frame are skipped. Returns the number of views that were updated.
func (lt *LabelTool) Propagate(ann *annotation.Annotation, source int) (int, error) {
	if !lt.Loaded() {
		return 0, ErrNotLoaded
	}
	if source < 0 || source >= len(lt.views) {
		return 0, fmt.Errorf("%w: %v", calib.ErrInvalidView, source)
	}
	c, err := lt.Calibration()
	if err != nil {
		return 0, err
	}
	n := 0
	for j, v := range lt.views {
		if j == source {
			continue
		}
		rec := v.Current()
		if rec == nil {
			continue
		}
		converted, err := c.Convert(ann, source, j)
		if err != nil {
			return n, err
		}
		rec.Upsert(converted)
		v.Model.MarkModified(v.current)
		n++
	}
	if n != 0 {
		lt.events.SendEvent(StatusMessage{Message: fmt.Sprintf("Propagated %v to %d views", ann, n)})
	}
	return n, nil
}

// PropagateAll propagates every annotation of the current frame of 'source'.
// Returns the number of annotations propagated.
func (lt *LabelTool) PropagateAll(source int) (int, error) {
	if !lt.Loaded() {
		return 0, ErrNotLoaded
	}
	rec := lt.CurrentRecord(source)
	if rec == nil {
		return 0, fmt.Errorf("View %v has no current frame", source)
	}
	// Take a copy, in case a listener modifies the source frame
	anns := append([]*annotation.Annotation(nil), rec.Annotations...)
	for i, a := range anns {
		if _, err := lt.Propagate(a, source); err != nil {
			return i, err
		}
	}
	return len(anns), nil
}
