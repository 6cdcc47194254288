package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/labeltool/labeltool"
	"github.com/cyclopcam/labeltool/labeltool/config"
	"github.com/cyclopcam/labeltool/labeltool/settingsdb"
	"github.com/cyclopcam/labeltool/pkg/annotation"
	"github.com/cyclopcam/logs"
)

func main() {
	logger, err := logs.NewLog()
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	// Deferred Close calls in run must complete before we exit
	if err := run(logger, os.Args); err != nil {
		logger.Errorf("%v", err)
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}

func run(logger logs.Log, args []string) error {
	parser := argparse.NewParser("labeltool", "Multi-camera annotation tool")
	configFile := parser.String("c", "config", &argparse.Options{Help: "Config file path. If empty, the built-in configuration is used", Default: ""})

	statsCmd := parser.NewCommand("stats", "Show the files, annotations, and highest IDs of a sequence")
	statsSeq := statsCmd.String("s", "sequence", &argparse.Options{Help: "Sequence info file", Required: true})

	renameCmd := parser.NewCommand("rename", "Change an object ID in every camera")
	renameSeq := renameCmd.String("s", "sequence", &argparse.Options{Help: "Sequence info file", Required: true})
	renameOld := renameCmd.Int("", "old", &argparse.Options{Help: "Existing ID", Required: true})
	renameNew := renameCmd.Int("", "new", &argparse.Options{Help: "New ID", Required: true})
	renameStart := renameCmd.Int("", "start", &argparse.Options{Help: "First row", Default: 0})
	renameEnd := renameCmd.Int("", "end", &argparse.Options{Help: "Row after the last row. -1 = end of sequence", Default: -1})
	renameStamp := renameCmd.Int("", "stamp-of", &argparse.Options{Help: "Rename only inside the stamp that contains this row", Default: -1})

	convertCmd := parser.NewCommand("convert", "Convert a box from one camera to another")
	convertFrom := convertCmd.Int("", "from", &argparse.Options{Help: "Source camera", Default: 0})
	convertTo := convertCmd.Int("", "to", &argparse.Options{Help: "Target camera", Default: 1})
	convertX := convertCmd.Float("x", "x", &argparse.Options{Help: "Left", Default: 0.0})
	convertY := convertCmd.Float("y", "y", &argparse.Options{Help: "Top", Default: 0.0})
	convertW := convertCmd.Float("", "width", &argparse.Options{Help: "Width", Default: 0.0})
	convertH := convertCmd.Float("", "height", &argparse.Options{Help: "Height", Default: 0.0})

	propagateCmd := parser.NewCommand("propagate", "Copy every annotation of one camera's frame into the other cameras, and save")
	propagateSeq := propagateCmd.String("s", "sequence", &argparse.Options{Help: "Sequence info file", Required: true})
	propagateView := propagateCmd.Int("", "view", &argparse.Options{Help: "Source camera", Default: 0})
	propagateRow := propagateCmd.Int("", "row", &argparse.Options{Help: "Row (frame index)", Required: true})

	if err := parser.Parse(args); err != nil {
		return errors.New(parser.Usage(err))
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.LoadConfig(*configFile); err != nil {
			return err
		}
	}

	opt := labeltool.Options{}
	if cfg.SettingsDB != "" {
		settings, err := settingsdb.Open(logger, cfg.SettingsDB)
		if err != nil {
			return err
		}
		defer settings.Close()
		opt.Settings = settings
	}

	lt, err := labeltool.New(logger, cfg, opt)
	if err != nil {
		return err
	}
	defer lt.Close()

	switch {
	case statsCmd.Happened():
		if err := lt.LoadSequence(*statsSeq); err != nil {
			return err
		}
		for !lt.Idle(50 * time.Millisecond) {
		}
		for i := 0; i < lt.NumViews(); i++ {
			v := lt.View(i)
			fmt.Printf("%-20v %6d rows %6d files %6d annotations\n", v.Name, v.Model.RowCount(), v.Model.NumFiles(), v.Model.NumAnnotations())
		}
		for class, id := range lt.MaxIDs() {
			fmt.Printf("Max ID of %v: %v\n", class, id)
		}
	case renameCmd.Happened():
		if err := lt.LoadSequence(*renameSeq); err != nil {
			return err
		}
		if *renameStamp >= 0 {
			if !lt.GotoIndex(*renameStamp, 0) {
				return fmt.Errorf("Row %v is out of range", *renameStamp)
			}
			return lt.RenameIDInStamp(int64(*renameOld), int64(*renameNew))
		}
		end := *renameEnd
		if end < 0 {
			end = lt.RowCount()
		}
		return lt.RenameID(int64(*renameOld), int64(*renameNew), *renameStart, end)
	case convertCmd.Happened():
		c, err := lt.Calibration()
		if err != nil {
			return err
		}
		out, err := c.Convert(annotation.NewBox("", *convertX, *convertY, *convertW, *convertH), *convertFrom, *convertTo)
		if err != nil {
			return err
		}
		fmt.Printf("x: %.3f  y: %.3f  width: %.3f  height: %.3f\n", out.X, out.Y, out.Width, out.Height)
	case propagateCmd.Happened():
		if err := lt.LoadSequence(*propagateSeq); err != nil {
			return err
		}
		if !lt.GotoIndex(*propagateRow, 0) {
			return fmt.Errorf("Row %v is out of range", *propagateRow)
		}
		n, err := lt.PropagateAll(*propagateView)
		if err != nil {
			return err
		}
		logger.Infof("Propagated %v annotations from view %v", n, *propagateView)
		return lt.Save()
	}
	return nil
}
