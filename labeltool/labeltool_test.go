package labeltool

import (
	"path/filepath"
	"testing"

	"github.com/cyclopcam/labeltool/labeltool/config"
	"github.com/cyclopcam/labeltool/labeltool/settingsdb"
	"github.com/cyclopcam/labeltool/pkg/annotation"
	"github.com/cyclopcam/labeltool/pkg/calib"
	"github.com/cyclopcam/labeltool/pkg/container"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Views = append(cfg.Views, config.View{Folder: "third"})
	_, err := New(logs.NewTestingLog(t), cfg, Options{})
	require.ErrorIs(t, err, calib.ErrUnsupportedCameraCount)

	cfg = config.Default()
	cfg.Labels[0].Inserter = "PolygonInserter"
	_, err = New(logs.NewTestingLog(t), cfg, Options{})
	require.ErrorContains(t, err, "PolygonInserter")
}

func TestViewsAreDistinct(t *testing.T) {
	lt, _ := newTestTool(t, config.Default(), Options{})
	require.Equal(t, 2, lt.NumViews())
	require.NotSame(t, lt.View(0), lt.View(1))
	require.Equal(t, "camera_6mm", lt.View(0).Name)
	require.Nil(t, lt.View(2))
	require.False(t, lt.Loaded())
	require.Equal(t, 0, lt.RowCount())
}

func TestLoadSequence(t *testing.T) {
	seqFile := writeSeq(t, t.TempDir(), []string{"cam_a", "cam_b"}, 12)
	editAnnotationFile(t, seqFile, "cam_a", func(records []*annotation.Record) {
		addVehicle(records, 2, 3)
		addVehicle(records, 5, 4)
	})
	lt, rec := newTestTool(t, config.Default(), Options{})
	require.NoError(t, lt.LoadSequence(seqFile))
	require.True(t, lt.Loaded())
	require.Equal(t, 12, lt.RowCount())
	require.Equal(t, "cam_b", lt.View(1).Name)
	require.Equal(t, "17", lt.Sequence().ID)
	require.Equal(t, []string{"Successfully loaded " + lt.SequenceFile() + " (12 files, 2 annotations)"}, statusMessages(rec))
	require.Contains(t, rec.Events, AnnotationsLoaded{Filename: lt.SequenceFile()})
	require.Equal(t, int64(5), lt.NextID("Vehicle"))
	require.Equal(t, int64(1), lt.NextID("Pedestrian"))

	lt.Clear()
	require.False(t, lt.Loaded())
	require.Equal(t, "", lt.SequenceFile())
	require.Equal(t, int64(1), lt.NextID("Vehicle"))
}

func TestLoadSequenceWrongViewCount(t *testing.T) {
	seqFile := writeSeq(t, t.TempDir(), []string{"a", "b", "c"}, 3)
	lt, rec := newTestTool(t, config.Default(), Options{})
	require.Error(t, lt.LoadSequence(seqFile))
	require.False(t, lt.Loaded())
	msgs := statusMessages(rec)
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0], "Error: Loading failed")
}

func TestSave(t *testing.T) {
	empty, _ := newTestTool(t, config.Default(), Options{})
	require.ErrorIs(t, empty.Save(), ErrNotLoaded)

	lt, rec, seqFile := loadTestTool(t, 4)

	require.True(t, lt.GotoIndex(1, 0))
	_, err := lt.Insert(0, "Pedestrian", 500, 400, 20, 60)
	require.NoError(t, err)
	require.True(t, lt.Dirty())
	require.NoError(t, lt.Save())
	require.False(t, lt.Dirty())
	msgs := statusMessages(rec)
	require.Equal(t, "Successfully saved files.", msgs[len(msgs)-1])

	for _, cam := range []string{"cam_a", "cam_b"} {
		records := loadAnnotationFile(t, seqFile, cam)
		require.Len(t, records[1].Annotations, 1)
		require.True(t, records[1].Annotations[0].HasID(1))
		require.Equal(t, "Pedestrian", records[1].Annotations[0].Class)
	}
}

func TestSaveViewAs(t *testing.T) {
	lt, _, _ := loadTestTool(t, 4)
	require.True(t, lt.GotoIndex(0, 0))
	_, err := lt.Insert(1, "Vehicle", 10, 10, 10, 10)
	require.NoError(t, err)

	fn := filepath.Join(t.TempDir(), "cam_b.yaml")
	require.NoError(t, lt.SaveView(1, fn))
	require.Equal(t, fn, lt.View(1).Filename)
	require.False(t, lt.View(1).Model.Dirty())
	require.True(t, lt.View(0).Model.Dirty())

	records, err := (&container.YAMLContainer{}).Load(fn)
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Len(t, records[0].Annotations, 1)

	require.ErrorIs(t, lt.SaveView(1, filepath.Join(t.TempDir(), "cam_b.txt")), container.ErrNoContainer)
	require.ErrorIs(t, lt.SaveView(5, fn), calib.ErrInvalidView)
}

func TestFrameCommands(t *testing.T) {
	lt, _, _ := loadTestTool(t, 4)
	require.True(t, lt.GotoIndex(2, 0))

	a, err := lt.Insert(0, "Vehicle", 100, 100, 50, 50)
	require.NoError(t, err)
	b, err := lt.Insert(0, "Vehicle", 120, 120, 50, 50)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		lt.CurrentRecord(i).Annotations[0].Attributes = map[string]any{annotation.AttrUnconfirmed: true}
	}

	hits := lt.SelectAt(0, 130, 130)
	require.Len(t, hits, 2)
	hits = lt.SelectAt(0, 110, 110)
	require.Equal(t, []*annotation.Annotation{a}, hits)
	require.Empty(t, lt.SelectAt(0, 0, 0))
	require.Nil(t, lt.SelectAt(3, 0, 0))

	lt.ConfirmAll()
	for i := 0; i < 2; i++ {
		require.NotContains(t, lt.CurrentRecord(i).Annotations[0].Attributes, annotation.AttrUnconfirmed)
	}

	lt.SetUnlabeled(true)
	require.True(t, lt.CurrentRecord(0).Unlabeled)
	require.True(t, lt.CurrentRecord(1).Unlabeled)

	require.Equal(t, 2, lt.DeleteByID(*b.ID))
	require.Len(t, lt.CurrentRecord(0).Annotations, 1)
	require.Len(t, lt.CurrentRecord(1).Annotations, 1)
	require.Equal(t, 0, lt.DeleteByID(*b.ID))
}

func TestResume(t *testing.T) {
	dir := t.TempDir()
	settings, err := settingsdb.Open(logs.NewTestingLog(t), filepath.Join(dir, "settings.sqlite"))
	require.NoError(t, err)
	defer settings.Close()
	seqFile := writeSeq(t, dir, []string{"cam_a", "cam_b"}, 8)

	lt, _ := newTestTool(t, config.Default(), Options{Settings: settings})
	require.NoError(t, lt.LoadSequence(seqFile))
	require.False(t, lt.Resume())
	require.True(t, lt.GotoIndex(6, 0))
	lt.Close()

	last, err := settings.GetVariable(settingsdb.VarLastSequence)
	require.NoError(t, err)
	require.Equal(t, lt.SequenceFile(), last)

	lt2, _ := newTestTool(t, config.Default(), Options{Settings: settings})
	require.NoError(t, lt2.LoadSequence(seqFile))
	require.True(t, lt2.Resume())
	requireRows(t, lt2, 6)
}

func TestAddVideoFile(t *testing.T) {
	seqFile := writeSeq(t, t.TempDir(), []string{"cam_a", "cam_b"}, 3)
	frames := &fakeVideos{timestamps: map[string][]float64{
		"drive.mp4": {0, 0.04, 0.08},
		"blank.mp4": {},
	}}
	lt, _ := newTestTool(t, config.Default(), Options{Frames: frames})
	_, err := lt.AddVideoFile(0, "drive.mp4")
	require.ErrorIs(t, err, ErrNotLoaded)
	require.NoError(t, lt.LoadSequence(seqFile))

	row, err := lt.AddVideoFile(0, "drive.mp4")
	require.NoError(t, err)
	require.Equal(t, 3, row)
	m := lt.View(0).Model
	require.Equal(t, 6, m.RowCount())
	require.Equal(t, 4, m.NumFiles())
	require.True(t, m.Dirty())
	f := m.Row(5)
	require.Equal(t, annotation.ClassFrame, f.Class)
	require.Equal(t, 2, f.Num)
	require.Equal(t, 0.08, f.Timestamp)
	require.Equal(t, "drive.mp4", m.Parent(5).Filename)

	row, err = lt.AddVideoFile(0, "blank.mp4")
	require.NoError(t, err)
	require.Equal(t, -1, row)

	_, err = lt.AddVideoFile(0, "missing.mp4")
	require.Error(t, err)
	_, err = lt.AddVideoFile(4, "drive.mp4")
	require.ErrorIs(t, err, calib.ErrInvalidView)

	// Frames survive a save and reload
	require.NoError(t, lt.Save())
	require.NoError(t, lt.LoadSequence(seqFile))
	f = lt.View(0).Model.Row(5)
	require.Equal(t, annotation.ClassFrame, f.Class)
	require.Equal(t, 2, f.Num)
}
