package container

import (
	"bufio"
	"os"
	"strings"

	"github.com/cyclopcam/labeltool/pkg/annotation"
)

// FileListContainer reads a text file with one image filename per line, and produces
// an unannotated image record for each. It is used to start a new labelling job.
type FileListContainer struct {
	filename string
}

func (c *FileListContainer) Filename() string {
	return c.filename
}

func (c *FileListContainer) Load(filename string) ([]*annotation.Record, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records := []*annotation.Record{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		records = append(records, &annotation.Record{
			Class:    annotation.ClassImage,
			Filename: line,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	c.filename = filename
	return records, nil
}

func (c *FileListContainer) Save(records []*annotation.Record, filename string) error {
	return ErrReadOnly
}
