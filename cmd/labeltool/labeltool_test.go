package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cyclopcam/labeltool/labeltool/settingsdb"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, filename string, v any) {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filename, b, 0644))
}

func TestFailedCommandStillSavesPosition(t *testing.T) {
	dir := t.TempDir()
	seqFile := filepath.Join(dir, "seq.json")
	writeJSON(t, seqFile, map[string]any{
		"ID":          1,
		"img_dir":     "cam_a,cam_b",
		"img_format":  "%06d.jpg",
		"start_frame": 0,
		"end_frame":   4,
	})
	dbFile := filepath.Join(dir, "settings.sqlite")
	cfgFile := filepath.Join(dir, "labeltool.json")
	writeJSON(t, cfgFile, map[string]any{"settingsDB": dbFile})

	// Row 2 exists, view 7 does not
	err := run(logs.NewTestingLog(t), []string{"labeltool", "-c", cfgFile, "propagate", "-s", seqFile, "--row", "2", "--view", "7"})
	require.Error(t, err)

	db, err := settingsdb.Open(logs.NewTestingLog(t), dbFile)
	require.NoError(t, err)
	defer db.Close()
	row, ok, err := db.Position(seqFile)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, row)
}

func TestConvert(t *testing.T) {
	require.NoError(t, run(logs.NewTestingLog(t), []string{"labeltool", "convert", "--from", "0", "--to", "1", "-x", "100", "-y", "100", "--width", "50", "--height", "50"}))
	require.Error(t, run(logs.NewTestingLog(t), []string{"labeltool", "convert", "--to", "9"}))
}
