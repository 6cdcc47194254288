package labeltool

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cyclopcam/labeltool/labeltool/config"
	"github.com/cyclopcam/labeltool/pkg/annotation"
	"github.com/cyclopcam/labeltool/pkg/container"
	"github.com/cyclopcam/labeltool/pkg/event"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

// writeSeq writes a sequence info file with one image directory per camera
func writeSeq(t *testing.T, dir string, cameras []string, nFrames int) string {
	seq := map[string]any{
		"ID":          17,
		"img_dir":     strings.Join(cameras, ","),
		"img_format":  "%06d.jpg",
		"start_frame": 0,
		"end_frame":   nFrames - 1,
	}
	b, err := json.Marshal(seq)
	require.NoError(t, err)
	fn := filepath.Join(dir, "seq.json")
	require.NoError(t, os.WriteFile(fn, b, 0644))
	return fn
}

// editAnnotationFile creates the annotation files of a sequence, and lets 'edit' change the records of one camera
func editAnnotationFile(t *testing.T, seqFile, camera string, edit func(records []*annotation.Record)) {
	seq, err := ReadSeqInfo(seqFile)
	require.NoError(t, err)
	_, err = CreateAnnotations(seqFile, seq)
	require.NoError(t, err)
	fn := seq.AnnotationFile(seqFile, camera)
	c := &container.JSONContainer{}
	records, err := c.Load(fn)
	require.NoError(t, err)
	edit(records)
	require.NoError(t, c.Save(records, fn))
}

func loadAnnotationFile(t *testing.T, seqFile, camera string) []*annotation.Record {
	seq, err := ReadSeqInfo(seqFile)
	require.NoError(t, err)
	c := &container.JSONContainer{}
	records, err := c.Load(seq.AnnotationFile(seqFile, camera))
	require.NoError(t, err)
	return records
}

func newTestTool(t *testing.T, cfg *config.Config, opt Options) (*LabelTool, *event.Recorder) {
	lt, err := New(logs.NewTestingLog(t), cfg, opt)
	require.NoError(t, err)
	rec := &event.Recorder{}
	lt.Events().AddListener(rec)
	return lt, rec
}

// loadTestTool creates a tool with the default configuration, and loads a two camera sequence of nFrames
func loadTestTool(t *testing.T, nFrames int) (*LabelTool, *event.Recorder, string) {
	seqFile := writeSeq(t, t.TempDir(), []string{"cam_a", "cam_b"}, nFrames)
	lt, rec := newTestTool(t, config.Default(), Options{})
	require.NoError(t, lt.LoadSequence(seqFile))
	rec.Reset()
	return lt, rec, seqFile
}

func statusMessages(rec *event.Recorder) []string {
	msgs := []string{}
	for _, e := range rec.Events {
		if s, ok := e.(StatusMessage); ok {
			msgs = append(msgs, s.Message)
		}
	}
	return msgs
}

func currentChanges(rec *event.Recorder) []CurrentChanged {
	all := []CurrentChanged{}
	for _, e := range rec.Events {
		if c, ok := e.(CurrentChanged); ok {
			all = append(all, c)
		}
	}
	return all
}

func countID(m *annotation.Model, id int64) int {
	n := 0
	for r := 0; r < m.RowCount(); r++ {
		n += m.Row(r).CountID(id)
	}
	return n
}

var errDiskFull = errors.New("disk full")

// failingContainer is a JSON container that refuses to save files whose name contains 'fail'
type failingContainer struct {
	container.JSONContainer
	fail string
}

func (c *failingContainer) Save(records []*annotation.Record, filename string) error {
	if strings.Contains(filepath.Base(filename), c.fail) {
		return errDiskFull
	}
	return c.JSONContainer.Save(records, filename)
}

func failingRegistry(fail string) map[string]container.Constructor {
	r := container.DefaultRegistry()
	r["json"] = func() container.Container { return &failingContainer{fail: fail} }
	return r
}

// countingContainer is a JSON container that remembers which files it saved
type countingContainer struct {
	container.JSONContainer
	saved map[string]int
}

func (c *countingContainer) Save(records []*annotation.Record, filename string) error {
	if err := c.JSONContainer.Save(records, filename); err != nil {
		return err
	}
	c.saved[filepath.Base(filename)]++
	return nil
}

func countingRegistry(saved map[string]int) map[string]container.Constructor {
	r := container.DefaultRegistry()
	r["json"] = func() container.Container { return &countingContainer{saved: saved} }
	return r
}

// fakeVideos is a FrameSource that knows the frame timestamps of some videos
type fakeVideos struct {
	container.ImageFiles
	timestamps map[string][]float64
}

func (f *fakeVideos) FrameTimestamps(videoFilename string) ([]float64, error) {
	ts, ok := f.timestamps[videoFilename]
	if !ok {
		return nil, os.ErrNotExist
	}
	return ts, nil
}
