package container

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cyclopcam/labeltool/pkg/annotation"
)

// Package container reads and writes annotation files.

var ErrNoContainer = errors.New("No annotation container matches filename")
var ErrReadOnly = errors.New("Annotation container is read-only")

// Container loads and saves the records of one annotation file
type Container interface {
	// Load reads all records from filename, and remembers filename
	Load(filename string) ([]*annotation.Record, error)

	// Save writes records to filename, and remembers filename
	Save(records []*annotation.Record, filename string) error

	// Filename returns the file that was last loaded or saved
	Filename() string
}

// Constructor creates a new, empty container
type Constructor func() Container

// Pattern maps a filename glob (eg "*.json") to a named container (eg "json")
type Pattern struct {
	Pattern   string `json:"pattern"`
	Container string `json:"container"`
}

// DefaultPatterns are the patterns for the built-in containers
var DefaultPatterns = []Pattern{
	{Pattern: "*.json", Container: "json"},
	{Pattern: "*.yaml", Container: "yaml"},
	{Pattern: "*.yml", Container: "yaml"},
	{Pattern: "*.sloth-init", Container: "filelist"},
}

// DefaultRegistry returns the built-in container constructors, keyed by name
func DefaultRegistry() map[string]Constructor {
	return map[string]Constructor{
		"json":     func() Container { return &JSONContainer{} },
		"yaml":     func() Container { return &YAMLContainer{} },
		"filelist": func() Container { return &FileListContainer{} },
	}
}

type factoryEntry struct {
	pattern     string
	constructor Constructor
}

// Factory creates containers based on the filename
type Factory struct {
	entries []factoryEntry
}

// NewFactory resolves every container name in 'patterns' against 'registry'.
// An unknown name, or a malformed pattern, is an error.
func NewFactory(patterns []Pattern, registry map[string]Constructor) (*Factory, error) {
	f := &Factory{}
	for _, p := range patterns {
		if _, err := filepath.Match(p.Pattern, ""); err != nil {
			return nil, fmt.Errorf("Invalid container pattern '%v': %w", p.Pattern, err)
		}
		c, ok := registry[p.Container]
		if !ok {
			return nil, fmt.Errorf("Unknown annotation container '%v' for pattern '%v'", p.Container, p.Pattern)
		}
		f.entries = append(f.entries, factoryEntry{pattern: p.Pattern, constructor: c})
	}
	return f, nil
}

// Create returns a new container for filename. The first matching pattern wins.
func (f *Factory) Create(filename string) (Container, error) {
	base := filepath.Base(filename)
	for _, e := range f.entries {
		if ok, _ := filepath.Match(e.pattern, base); ok {
			return e.constructor(), nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrNoContainer, filename)
}

// Patterns returns the filename patterns that the factory understands
func (f *Factory) Patterns() []string {
	p := make([]string, len(f.entries))
	for i, e := range f.entries {
		p[i] = e.pattern
	}
	return p
}

// ResolvePath returns the path of a media file that is referenced from inside an
// annotation file. Relative paths are relative to the directory of the annotation file.
func ResolvePath(annotationFile, mediaFile string) string {
	if filepath.IsAbs(mediaFile) || annotationFile == "" {
		return mediaFile
	}
	return filepath.Join(filepath.Dir(annotationFile), mediaFile)
}
