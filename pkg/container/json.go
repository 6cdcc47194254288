package container

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cyclopcam/labeltool/pkg/annotation"
	"github.com/cyclopcam/labeltool/pkg/iox"
)

// JSONContainer stores records as an indented JSON array
type JSONContainer struct {
	filename string
}

func (c *JSONContainer) Filename() string {
	return c.filename
}

func (c *JSONContainer) Load(filename string) ([]*annotation.Record, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	list := []any{}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("Error loading as JSON %v: %w", filename, err)
	}
	records, err := annotation.RecordsFromList(list)
	if err != nil {
		return nil, fmt.Errorf("Invalid annotations in %v: %w", filename, err)
	}
	c.filename = filename
	return records, nil
}

func (c *JSONContainer) Save(records []*annotation.Record, filename string) error {
	// Map keys are sorted by encoding/json, which keeps diffs of annotation files small
	b, err := json.MarshalIndent(annotation.RecordsToList(records), "", "    ")
	if err != nil {
		return err
	}
	if err := iox.WriteFile(filename, b); err != nil {
		return err
	}
	c.filename = filename
	return nil
}
