package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cyclopcam/labeltool/pkg/calib"
	"github.com/cyclopcam/labeltool/pkg/container"
)

// Number of frames in a stamp (a coarse navigation chunk)
const DefaultStampSize = 400

// Label is a class of object that can be annotated
type Label struct {
	Class      string         `json:"class"`      // eg "Vehicle"
	Attributes map[string]any `json:"attributes"` // Attribute name -> allowed values, eg "scale": ["small", "large"]
	Item       string         `json:"item"`       // Name of the visualization item (used by the UI only)
	Inserter   string         `json:"inserter"`   // Name of the inserter that creates new annotations of this class
	Hotkey     string         `json:"hotkey"`     // eg "V"
	Text       string         `json:"text"`       // Button text
}

// View is one camera
type View struct {
	Folder string `json:"folder"` // Image directory of this camera inside the sequence, eg "camera_6mm"
}

type Config struct {
	Labels      []Label             `json:"labels"`
	Views       []View              `json:"views"`
	Containers  []container.Pattern `json:"containers"`
	StampSize   int                 `json:"stampSize"`   // Frames per stamp
	Anchors     []calib.Anchor      `json:"anchors"`     // Calibration anchors, one per view. Empty = use the built-in table for len(Views).
	ImageWidth  int                 `json:"imageWidth"`  // Base resolution when it can't be read from the first frame
	ImageHeight int                 `json:"imageHeight"` // Base resolution when it can't be read from the first frame
	SettingsDB  string              `json:"settingsDB"`  // Path to sqlite settings DB. Empty = don't remember anything.
	BackupDir   string              `json:"backupDir"`   // If not empty, annotation files are copied here before bulk ID changes
}

// Default returns the built-in configuration: vehicles and pedestrians, seen by two cameras.
func Default() *Config {
	return &Config{
		Labels: []Label{
			{
				Class: "Vehicle",
				Attributes: map[string]any{
					"scale": []any{"small", "middle", "large", "special", "notcare"},
				},
				Item:     "IDRectItem",
				Inserter: "IDRectItemInserter",
				Hotkey:   "V",
				Text:     "Vehicle",
			},
			{
				Class: "Pedestrian",
				Attributes: map[string]any{
					"type": []any{"rider", "pedestrian"},
				},
				Item:     "IDRectItem",
				Inserter: "IDRectItemInserter",
				Hotkey:   "P",
				Text:     "Pedestrian",
			},
		},
		Views: []View{
			{Folder: "camera_6mm"},
			{Folder: "camera_25mm"},
		},
		Containers:  append([]container.Pattern(nil), container.DefaultPatterns...),
		StampSize:   DefaultStampSize,
		ImageWidth:  1920,
		ImageHeight: 1200,
	}
}

// LoadConfig reads a JSON config file. Fields that are absent get their default values.
func LoadConfig(filename string) (*Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("Error loading %v: %w", filename, err)
	}
	cfg := &Config{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("Error loading as JSON %v: %w", filename, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Invalid config %v: %w", filename, err)
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Labels == nil {
		c.Labels = def.Labels
	}
	if c.Views == nil {
		c.Views = def.Views
	}
	if c.Containers == nil {
		c.Containers = def.Containers
	}
	if c.StampSize == 0 {
		c.StampSize = def.StampSize
	}
	if c.ImageWidth == 0 || c.ImageHeight == 0 {
		c.ImageWidth = def.ImageWidth
		c.ImageHeight = def.ImageHeight
	}
}

// Validate checks for misconfiguration that would stop the tool from working at all
func (c *Config) Validate() error {
	if len(c.Views) == 0 {
		return errors.New("No camera views configured")
	}
	if c.StampSize <= 0 {
		return fmt.Errorf("Stamp size must be positive, but is %v", c.StampSize)
	}
	if _, err := c.ResolveAnchors(); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, l := range c.Labels {
		if l.Class == "" {
			return errors.New("Label with empty class")
		}
		if seen[l.Class] {
			return fmt.Errorf("Duplicate label class '%v'", l.Class)
		}
		seen[l.Class] = true
	}
	return nil
}

// ResolveAnchors returns the calibration anchors, one per view
func (c *Config) ResolveAnchors() ([]calib.Anchor, error) {
	if len(c.Anchors) == 0 {
		return calib.DefaultAnchors(len(c.Views))
	}
	if len(c.Anchors) != len(c.Views) {
		return nil, fmt.Errorf("%v calibration anchors configured, but there are %v views", len(c.Anchors), len(c.Views))
	}
	return c.Anchors, nil
}

// LabelClasses returns the class names of all labels, in configuration order
func (c *Config) LabelClasses() []string {
	classes := make([]string, len(c.Labels))
	for i, l := range c.Labels {
		classes[i] = l.Class
	}
	return classes
}

// FindLabel returns the label with the given class, or nil
func (c *Config) FindLabel(class string) *Label {
	for i := range c.Labels {
		if c.Labels[i].Class == class {
			return &c.Labels[i]
		}
	}
	return nil
}
