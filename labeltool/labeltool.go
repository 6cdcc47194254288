package labeltool

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"time"

	"github.com/cyclopcam/labeltool/labeltool/config"
	"github.com/cyclopcam/labeltool/labeltool/settingsdb"
	"github.com/cyclopcam/labeltool/pkg/annotation"
	"github.com/cyclopcam/labeltool/pkg/calib"
	"github.com/cyclopcam/labeltool/pkg/container"
	"github.com/cyclopcam/labeltool/pkg/event"
	"github.com/cyclopcam/logs"
)

// ErrNotLoaded is returned by operations that need annotations, before a sequence has been loaded
var ErrNotLoaded = errors.New("No annotations loaded")

// Options are the collaborators of a LabelTool. Zero values select the defaults.
type Options struct {
	Inserters  *config.Registry                 // Default config.DefaultRegistry()
	Containers map[string]container.Constructor // Default container.DefaultRegistry()
	Frames     container.FrameSource            // Default container.ImageFiles{}
	Settings   *settingsdb.SettingsDB           // If nil, positions and ID changes are not remembered
}

// LabelTool keeps N camera views of the same sequence in lock-step, and propagates
// edits between them. It is not safe for concurrent use.
type LabelTool struct {
	Log       logs.Log
	cfg       *config.Config
	events    event.Sender
	factory   *container.Factory
	frames    container.FrameSource
	inserters map[string]config.Inserter
	anchors   []calib.Anchor
	calib     *calib.Calibration // nil until first needed
	settings  *settingsdb.SettingsDB
	stamps    StampIndex

	views     []*View
	seqFile   string
	seq       *SeqInfo
	maxIDs    map[string]int64
	curRow    int // Row of the first view, or -1
	keepAnnos bool
	loader    *Loader
}

// New creates a LabelTool with one empty view per configured camera.
// Configuration errors (eg an unsupported camera count) are detected here.
func New(log logs.Log, cfg *config.Config, opt Options) (*LabelTool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	anchors, err := cfg.ResolveAnchors()
	if err != nil {
		return nil, err
	}
	if opt.Inserters == nil {
		opt.Inserters = config.DefaultRegistry()
	}
	if opt.Containers == nil {
		opt.Containers = container.DefaultRegistry()
	}
	if opt.Frames == nil {
		opt.Frames = container.ImageFiles{}
	}
	inserters, err := opt.Inserters.ResolveInserters(cfg.Labels)
	if err != nil {
		return nil, err
	}
	factory, err := container.NewFactory(cfg.Containers, opt.Containers)
	if err != nil {
		return nil, err
	}
	lt := &LabelTool{
		Log:       newPrefixLogger(log, "LabelTool:"),
		cfg:       cfg,
		factory:   factory,
		frames:    opt.Frames,
		inserters: inserters,
		anchors:   anchors,
		settings:  opt.Settings,
		stamps:    StampIndex{Size: cfg.StampSize},
		curRow:    -1,
		maxIDs:    BuildMaxIDTable(cfg.LabelClasses(), nil),
	}
	for i, v := range cfg.Views {
		lt.views = append(lt.views, newView(i, v.Folder))
	}
	return lt, nil
}

// Events returns the sender of CurrentChanged, DirtyChanged, StatusMessage and AnnotationsLoaded
func (lt *LabelTool) Events() *event.Sender {
	return &lt.events
}

func (lt *LabelTool) Config() *config.Config {
	return lt.cfg
}

func (lt *LabelTool) Stamps() StampIndex {
	return lt.stamps
}

func (lt *LabelTool) NumViews() int {
	return len(lt.views)
}

// View returns view i, or nil
func (lt *LabelTool) View(i int) *View {
	if i < 0 || i >= len(lt.views) {
		return nil
	}
	return lt.views[i]
}

// SequenceFile returns the sequence info file that was loaded, or an empty string
func (lt *LabelTool) SequenceFile() string {
	return lt.seqFile
}

// Sequence returns the loaded sequence info, or nil
func (lt *LabelTool) Sequence() *SeqInfo {
	return lt.seq
}

// Loaded returns true if every view has a model
func (lt *LabelTool) Loaded() bool {
	for _, v := range lt.views {
		if v.Model == nil {
			return false
		}
	}
	return len(lt.views) != 0
}

// RowCount returns the number of rows of the first view
func (lt *LabelTool) RowCount() int {
	if !lt.Loaded() {
		return 0
	}
	return lt.views[0].Model.RowCount()
}

// Dirty returns true if any view has unsaved changes
func (lt *LabelTool) Dirty() bool {
	for _, v := range lt.views {
		if v.Model != nil && v.Model.Dirty() {
			return true
		}
	}
	return false
}

func (lt *LabelTool) status(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	lt.Log.Infof("%v", msg)
	lt.events.SendEvent(StatusMessage{Message: msg})
}

// LoadSequence reads a sequence info file, creating annotation files for its cameras if
// necessary, and loads one model per view. If anything fails, the previous state is kept.
func (lt *LabelTool) LoadSequence(seqFilename string) error {
	if err := lt.loadSequence(seqFilename); err != nil {
		lt.status("Error: Loading failed (%v)", err)
		return err
	}
	return nil
}

func (lt *LabelTool) loadSequence(seqFilename string) error {
	if abs, err := filepath.Abs(seqFilename); err == nil {
		seqFilename = abs
	}
	seq, err := ReadSeqInfo(seqFilename)
	if err != nil {
		return err
	}
	if len(seq.ImageDirs) != len(lt.views) {
		return fmt.Errorf("Sequence %v has %v cameras, but %v views are configured", seqFilename, len(seq.ImageDirs), len(lt.views))
	}
	lt.Log.Infof("Loading sequence %v from %v", seq.ID, seq.AnnotationDir(seqFilename))
	files, err := CreateAnnotations(seqFilename, seq)
	if err != nil {
		return err
	}

	containers := make([]container.Container, len(files))
	models := make([]*annotation.Model, len(files))
	for i, fn := range files {
		c, err := lt.factory.Create(fn)
		if err != nil {
			return err
		}
		records, err := c.Load(fn)
		if err != nil {
			return fmt.Errorf("Error loading annotations %v: %w", fn, err)
		}
		containers[i] = c
		models[i] = annotation.NewModel(records)
	}

	// Commit
	for i, v := range lt.views {
		v.Name = seq.ImageDirs[i]
		v.Container = containers[i]
		v.Filename = files[i]
		v.current = -1
		lt.attachModel(v, models[i])
	}
	lt.seqFile = seqFilename
	lt.seq = seq
	lt.curRow = -1
	lt.maxIDs = BuildMaxIDTable(lt.cfg.LabelClasses(), models)
	lt.seedCalibration()
	lt.restartLoader()

	if lt.settings != nil {
		if err := lt.settings.SetVariable(settingsdb.VarLastSequence, seqFilename); err != nil {
			lt.Log.Warnf("Failed to remember last sequence: %v", err)
		}
	}

	first := lt.views[0].Model
	lt.status("Successfully loaded %s (%d files, %d annotations)", seqFilename, first.NumFiles(), first.NumAnnotations())
	lt.events.SendEvent(AnnotationsLoaded{Filename: seqFilename})
	return nil
}

func (lt *LabelTool) attachModel(v *View, m *annotation.Model) {
	idx := v.Index
	m.OnDirtyChanged(func(dirty bool) {
		lt.events.SendEvent(DirtyChanged{View: idx, Dirty: dirty})
	})
	v.Model = m
}

// Clear forgets all annotations
func (lt *LabelTool) Clear() {
	for _, v := range lt.views {
		v.Model = nil
		v.Container = nil
		v.Filename = ""
		v.current = -1
	}
	lt.seqFile = ""
	lt.seq = nil
	lt.curRow = -1
	lt.maxIDs = BuildMaxIDTable(lt.cfg.LabelClasses(), nil)
	if lt.loader != nil {
		lt.loader.Stop()
		lt.loader = nil
	}
	lt.events.SendEvent(AnnotationsLoaded{})
}

// Save writes the annotations of every view to its file
func (lt *LabelTool) Save() error {
	if !lt.Loaded() {
		return ErrNotLoaded
	}
	if err := lt.saveAll(); err != nil {
		return err
	}
	lt.status("Successfully saved files.")
	lt.savePosition()
	return nil
}

// saveAll saves every view, and clears the dirty flag of each view after it has been saved
func (lt *LabelTool) saveAll() error {
	for _, v := range lt.views {
		if err := v.Container.Save(v.Model.Files(), v.Filename); err != nil {
			err = fmt.Errorf("Error saving %v: %w", v.Filename, err)
			lt.status("Error: Saving failed (%v)", err)
			return err
		}
		v.Model.SetDirty(false)
	}
	return nil
}

// SaveView writes the annotations of one view to 'filename', which may be a different
// file (and format) than the one it was loaded from. The view remembers the new file.
func (lt *LabelTool) SaveView(view int, filename string) error {
	v := lt.View(view)
	if v == nil {
		return fmt.Errorf("%w: %v", calib.ErrInvalidView, view)
	}
	if v.Model == nil {
		return ErrNotLoaded
	}
	c := v.Container
	if c == nil || filename != v.Filename {
		var err error
		if c, err = lt.factory.Create(filename); err != nil {
			lt.status("Error: Saving failed (%v)", err)
			return err
		}
	}
	if err := c.Save(v.Model.Files(), filename); err != nil {
		lt.status("Error: Saving failed (%v)", err)
		return err
	}
	v.Container = c
	v.Filename = filename
	v.Model.SetDirty(false)
	lt.status("Successfully saved %s (%d files, %d annotations)", filename, v.Model.NumFiles(), v.Model.NumAnnotations())
	return nil
}

// savePosition remembers the current row of the sequence in the settings DB
func (lt *LabelTool) savePosition() {
	if lt.settings == nil || lt.seqFile == "" || lt.curRow < 0 {
		return
	}
	if err := lt.settings.SavePosition(lt.seqFile, lt.curRow); err != nil {
		lt.Log.Warnf("Failed to save position: %v", err)
	}
}

// Resume moves to the row that was current when the sequence was last saved or closed.
// Returns false if there is no remembered position.
func (lt *LabelTool) Resume() bool {
	if lt.settings == nil || !lt.Loaded() {
		return false
	}
	row, ok, err := lt.settings.Position(lt.seqFile)
	if err != nil {
		lt.Log.Warnf("Failed to read position: %v", err)
		return false
	}
	if !ok {
		return false
	}
	return lt.GotoIndex(row, 0)
}

// Close remembers the current position, and stops background work.
// It does not save annotations.
func (lt *LabelTool) Close() {
	lt.savePosition()
	if lt.loader != nil {
		lt.loader.Stop()
	}
}

// NextID returns a new ID for an object of the given class
func (lt *LabelTool) NextID(class string) int64 {
	lt.maxIDs[class]++
	return lt.maxIDs[class]
}

// MaxIDs returns a copy of the highest ID of every label class
func (lt *LabelTool) MaxIDs() map[string]int64 {
	return maps.Clone(lt.maxIDs)
}

// Insert creates a new annotation of 'class' in the current frame of 'view', through the
// label's inserter, and propagates it to the other views.
func (lt *LabelTool) Insert(view int, class string, x, y, width, height float64) (*annotation.Annotation, error) {
	label := lt.cfg.FindLabel(class)
	if label == nil {
		return nil, fmt.Errorf("Unknown label class '%v'", class)
	}
	v := lt.View(view)
	if v == nil {
		return nil, fmt.Errorf("%w: %v", calib.ErrInvalidView, view)
	}
	rec := v.Current()
	if rec == nil {
		return nil, fmt.Errorf("View %v has no current frame", view)
	}
	ann := lt.inserters[class].NewAnnotation(label, x, y, width, height, lt)
	rec.Upsert(ann)
	v.Model.MarkModified(v.current)
	if _, err := lt.Propagate(ann, view); err != nil {
		return ann, err
	}
	return ann, nil
}

// CommitEdit stores an annotation that the user has moved or resized in 'view', and
// propagates it to the other views.
func (lt *LabelTool) CommitEdit(view int, ann *annotation.Annotation) error {
	v := lt.View(view)
	if v == nil {
		return fmt.Errorf("%w: %v", calib.ErrInvalidView, view)
	}
	rec := v.Current()
	if rec == nil {
		return fmt.Errorf("View %v has no current frame", view)
	}
	// The edited annotation is usually already in the frame, and may have no ID
	if rec.IndexOf(ann) == -1 {
		rec.Upsert(ann)
	}
	v.Model.MarkModified(v.current)
	_, err := lt.Propagate(ann, view)
	return err
}

// SelectAt returns the annotations of the current frame of 'view' that contain the point (x, y)
func (lt *LabelTool) SelectAt(view int, x, y float64) []*annotation.Annotation {
	v := lt.View(view)
	if v == nil {
		return nil
	}
	rec := v.Current()
	if rec == nil {
		return nil
	}
	hits := []*annotation.Annotation{}
	for _, i := range rec.HitTest(x, y) {
		hits = append(hits, rec.Annotations[i])
	}
	return hits
}

// DeleteByID removes the object with the given ID from the current frame of every view.
// Returns the number of annotations removed.
func (lt *LabelTool) DeleteByID(id int64) int {
	total := 0
	for _, v := range lt.views {
		rec := v.Current()
		if rec == nil {
			continue
		}
		if n := rec.RemoveByID(id); n != 0 {
			v.Model.MarkModified(v.current)
			total += n
		}
	}
	return total
}

// ConfirmAll removes the 'unconfirmed' mark from every annotation of the current frame of every view
func (lt *LabelTool) ConfirmAll() {
	for _, v := range lt.views {
		rec := v.Current()
		if rec != nil && rec.ConfirmAll() {
			v.Model.MarkModified(v.current)
		}
	}
}

// SetUnlabeled marks the current frame of every view as (not) looked at
func (lt *LabelTool) SetUnlabeled(unlabeled bool) {
	for _, v := range lt.views {
		rec := v.Current()
		if rec != nil && rec.Unlabeled != unlabeled {
			rec.Unlabeled = unlabeled
			v.Model.MarkModified(v.current)
		}
	}
}

// AddImageFile appends an image to the model of 'view', and returns its row
func (lt *LabelTool) AddImageFile(view int, filename string) (int, error) {
	v := lt.View(view)
	if v == nil {
		return -1, fmt.Errorf("%w: %v", calib.ErrInvalidView, view)
	}
	if v.Model == nil {
		return -1, ErrNotLoaded
	}
	row := v.Model.AppendFile(&annotation.Record{
		Class:    annotation.ClassImage,
		Filename: filename,
	})
	return row, nil
}

// AddVideoFile appends a video to the model of 'view', with one frame per timestamp that
// the FrameSource reports. Returns the row of the first frame, or -1 if the video has no frames.
func (lt *LabelTool) AddVideoFile(view int, filename string) (int, error) {
	v := lt.View(view)
	if v == nil {
		return -1, fmt.Errorf("%w: %v", calib.ErrInvalidView, view)
	}
	if v.Model == nil {
		return -1, ErrNotLoaded
	}
	lt.Log.Infof("Importing frames from %v", filename)
	timestamps, err := lt.frames.FrameTimestamps(filename)
	if err != nil {
		return -1, fmt.Errorf("Error reading frames of %v: %w", filename, err)
	}
	video := &annotation.Record{
		Class:    annotation.ClassVideo,
		Filename: filename,
		Frames:   make([]*annotation.Record, len(timestamps)),
	}
	for i, ts := range timestamps {
		video.Frames[i] = &annotation.Record{
			Class:     annotation.ClassFrame,
			Num:       i,
			Timestamp: ts,
		}
	}
	lt.Log.Debugf("Added %v frames", len(timestamps))
	return v.Model.AppendFile(video), nil
}

// Idle does up to 'budget' of background work, and returns true when there is nothing left to do
func (lt *LabelTool) Idle(budget time.Duration) bool {
	if lt.loader == nil {
		return true
	}
	done := lt.loader.Step(budget)
	if done {
		lt.Log.Debugf("Annotation counts complete")
		lt.loader = nil
	}
	return done
}

func (lt *LabelTool) restartLoader() {
	models := make([]*annotation.Model, len(lt.views))
	for i, v := range lt.views {
		models[i] = v.Model
	}
	if lt.loader != nil {
		lt.loader.Stop()
	}
	lt.loader = NewLoader(models)
}
