package container

import (
	"fmt"
	"os"

	"github.com/cyclopcam/labeltool/pkg/annotation"
	"github.com/cyclopcam/labeltool/pkg/iox"
	"gopkg.in/yaml.v3"
)

// YAMLContainer stores records as a YAML sequence
type YAMLContainer struct {
	filename string
}

func (c *YAMLContainer) Filename() string {
	return c.filename
}

func (c *YAMLContainer) Load(filename string) ([]*annotation.Record, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	list := []any{}
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("Error loading as YAML %v: %w", filename, err)
	}
	records, err := annotation.RecordsFromList(list)
	if err != nil {
		return nil, fmt.Errorf("Invalid annotations in %v: %w", filename, err)
	}
	c.filename = filename
	return records, nil
}

func (c *YAMLContainer) Save(records []*annotation.Record, filename string) error {
	b, err := yaml.Marshal(annotation.RecordsToList(records))
	if err != nil {
		return err
	}
	if err := iox.WriteFile(filename, b); err != nil {
		return err
	}
	c.filename = filename
	return nil
}
