package iox

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// WriteStreamToFile writes src to dstFilename, by first writing to a temporary file
// in the same directory, and then renaming it over dstFilename.
// If anything fails, dstFilename is left untouched.
func WriteStreamToFile(dstFilename string, src io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dstFilename), "."+filepath.Base(dstFilename)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err = io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err = os.Rename(tmpName, dstFilename); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// WriteFile is WriteStreamToFile for a byte slice
func WriteFile(dstFilename string, data []byte) error {
	return WriteStreamToFile(dstFilename, bytes.NewReader(data))
}
