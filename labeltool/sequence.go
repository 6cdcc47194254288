package labeltool

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cyclopcam/labeltool/pkg/annotation"
	"github.com/cyclopcam/labeltool/pkg/container"
)

// SeqInfo describes a recorded sequence: one image directory per camera, with
// frames numbered from StartFrame to EndFrame (inclusive).
type SeqInfo struct {
	ID          string
	ImageDirs   []string // One per camera, eg "camera_6mm"
	ImageFormat string   // printf format of a frame filename, eg "%06d.jpg"
	StartFrame  int
	EndFrame    int
}

// NumFrames returns the number of frames in each camera directory
func (s *SeqInfo) NumFrames() int {
	return max(s.EndFrame-s.StartFrame+1, 0)
}

// AnnotationDir returns the directory that holds the annotation files of the sequence
func (s *SeqInfo) AnnotationDir(seqFilename string) string {
	return filepath.Join(filepath.Dir(seqFilename), "annotations-"+s.ID)
}

// AnnotationFile returns the annotation file of camera directory 'imgDir'
func (s *SeqInfo) AnnotationFile(seqFilename, imgDir string) string {
	return filepath.Join(s.AnnotationDir(seqFilename), imgDir+".json")
}

// ReadSeqInfo reads a sequence info file.
// The file is JSON, and numbers are accepted either as JSON numbers or as strings.
func ReadSeqInfo(filename string) (*SeqInfo, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("Error loading sequence info as JSON %v: %w", filename, err)
	}
	s := &SeqInfo{}
	if s.ID, err = seqString(m, "ID"); err != nil {
		return nil, fmt.Errorf("Invalid sequence info %v: %w", filename, err)
	}
	dirs, err := seqString(m, "img_dir")
	if err != nil {
		return nil, fmt.Errorf("Invalid sequence info %v: %w", filename, err)
	}
	for _, d := range strings.Split(dirs, ",") {
		if d = strings.TrimSpace(d); d != "" {
			s.ImageDirs = append(s.ImageDirs, d)
		}
	}
	if len(s.ImageDirs) == 0 {
		return nil, fmt.Errorf("Invalid sequence info %v: no image directories", filename)
	}
	if s.ImageFormat, err = seqString(m, "img_format"); err != nil {
		return nil, fmt.Errorf("Invalid sequence info %v: %w", filename, err)
	}
	if s.StartFrame, err = seqInt(m, "start_frame"); err != nil {
		return nil, fmt.Errorf("Invalid sequence info %v: %w", filename, err)
	}
	if s.EndFrame, err = seqInt(m, "end_frame"); err != nil {
		return nil, fmt.Errorf("Invalid sequence info %v: %w", filename, err)
	}
	return s, nil
}

func seqString(m map[string]any, key string) (string, error) {
	switch v := m[key].(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("missing '%v'", key)
	}
	return "", fmt.Errorf("'%v' must be a string", key)
}

func seqInt(m map[string]any, key string) (int, error) {
	switch v := m[key].(type) {
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	case nil:
		return 0, fmt.Errorf("missing '%v'", key)
	}
	return 0, fmt.Errorf("'%v' must be an integer", key)
}

// CreateAnnotations makes sure that there is an annotation file for every camera directory
// of the sequence. Missing files are created with one unlabeled image record per frame.
// Existing files are left alone. Returns the annotation files, in camera order.
func CreateAnnotations(seqFilename string, seq *SeqInfo) ([]string, error) {
	if err := os.MkdirAll(seq.AnnotationDir(seqFilename), 0755); err != nil {
		return nil, err
	}
	files := []string{}
	for _, dir := range seq.ImageDirs {
		fn := seq.AnnotationFile(seqFilename, dir)
		files = append(files, fn)
		if _, err := os.Stat(fn); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		records := make([]*annotation.Record, 0, seq.NumFrames())
		for f := seq.StartFrame; f <= seq.EndFrame; f++ {
			records = append(records, &annotation.Record{
				Class:    annotation.ClassImage,
				Filename: filepath.Join("..", dir, fmt.Sprintf(seq.ImageFormat, f)),
			})
		}
		c := &container.JSONContainer{}
		if err := c.Save(records, fn); err != nil {
			return nil, fmt.Errorf("Error creating annotation file %v: %w", fn, err)
		}
	}
	return files, nil
}

// BuildMaxIDTable returns the highest ID of every label class, over all models.
// Every class starts at zero. Annotations of other classes are ignored.
func BuildMaxIDTable(classes []string, models []*annotation.Model) map[string]int64 {
	table := map[string]int64{}
	for _, c := range classes {
		table[c] = 0
	}
	var visit func(r *annotation.Record)
	visit = func(r *annotation.Record) {
		for _, a := range r.Annotations {
			if a.ID == nil {
				continue
			}
			if cur, ok := table[a.Class]; ok && *a.ID > cur {
				table[a.Class] = *a.ID
			}
		}
		for _, f := range r.Frames {
			visit(f)
		}
	}
	for _, m := range models {
		for _, r := range m.Files() {
			visit(r)
		}
	}
	return table
}
