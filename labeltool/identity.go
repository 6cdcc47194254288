package labeltool

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/labeltool/labeltool/settingsdb"
	"github.com/cyclopcam/labeltool/pkg/gen"
	"github.com/otiai10/copy"
)

// RenameID changes the ID of every annotation with ID oldID to newID, in rows [start, end)
// of every view. start and end are clamped to the row range of the first view.
// Every view is then saved, even if it had no matches. If all saves succeed, the sequence
// is reloaded and the viewers are refreshed at the same row.
// Views are saved in order, and each view's dirty flag is cleared as soon as that view
// has been written. If a save fails, the views saved before it are clean. The failed view
// and the views after it are not written, and keep their renamed annotations in memory, unsaved.
// Nothing is rolled back.
func (lt *LabelTool) RenameID(oldID, newID int64, start, end int) error {
	if !lt.Loaded() {
		return ErrNotLoaded
	}
	rowCount := lt.RowCount()
	if rowCount == 0 {
		return nil
	}
	start = gen.Clamp(start, 0, rowCount-1)
	end = gen.Clamp(end, 0, rowCount-1)
	row := lt.curRow
	if row < 0 {
		row = 0
	}

	if err := lt.backupAnnotations(); err != nil {
		lt.status("Error: Saving failed (%v)", err)
		lt.recordIDChange(oldID, newID, start, end, err)
		return err
	}

	renamed := 0
	for _, v := range lt.views {
		for r := start; r < end; r++ {
			// Views may have fewer rows than the first view
			rec := v.Model.Row(r)
			if rec == nil {
				continue
			}
			if n := rec.ReplaceID(oldID, newID); n != 0 {
				v.Model.MarkModified(r)
				renamed += n
			}
		}
	}
	lt.Log.Infof("Renamed %v annotations from ID %v to %v in rows [%v, %v)", renamed, oldID, newID, start, end)

	if err := lt.saveAll(); err != nil {
		lt.recordIDChange(oldID, newID, start, end, err)
		return err
	}

	if err := lt.LoadSequence(lt.seqFile); err != nil {
		lt.recordIDChange(oldID, newID, start, end, err)
		return err
	}
	n := lt.RowCount()
	if n != 0 {
		// Step away and back, so that viewers redraw the current frame
		unmute := lt.events.Mute()
		row = gen.Wrap(row+1, n)
		lt.GotoIndex(row, 0)
		unmute()
		row = gen.Wrap(row-1, n)
		lt.GotoIndex(row, 0)
	}
	lt.recordIDChange(oldID, newID, start, end, nil)
	lt.status("Successfully saved files.")
	return nil
}

// RenameIDInStamp renames an ID inside the stamp that contains the current row
func (lt *LabelTool) RenameIDInStamp(oldID, newID int64) error {
	if !lt.Loaded() {
		return ErrNotLoaded
	}
	start, end := lt.stamps.Window(lt.curRow, lt.RowCount())
	return lt.RenameID(oldID, newID, start, end)
}

// backupAnnotations copies the annotation directory of the sequence into the backup directory
func (lt *LabelTool) backupAnnotations() error {
	if lt.cfg.BackupDir == "" || lt.seq == nil {
		return nil
	}
	src := lt.seq.AnnotationDir(lt.seqFile)
	dst := filepath.Join(lt.cfg.BackupDir, fmt.Sprintf("%v-%v", filepath.Base(src), time.Now().Format("20060102-150405.000")))
	lt.Log.Infof("Backing up %v to %v", src, dst)
	if err := copy.Copy(src, dst); err != nil {
		return fmt.Errorf("Error backing up annotations to %v: %w", dst, err)
	}
	return nil
}

func (lt *LabelTool) recordIDChange(oldID, newID int64, start, end int, err error) {
	if lt.settings == nil {
		return
	}
	change := &settingsdb.IDChange{
		Time:     dbh.MakeIntTime(time.Now()),
		Sequence: lt.seqFile,
		OldID:    oldID,
		NewID:    newID,
		RowStart: start,
		RowEnd:   end,
		Success:  err == nil,
	}
	if err != nil {
		change.Error = err.Error()
	}
	if e := lt.settings.RecordIDChange(change); e != nil {
		lt.Log.Warnf("Failed to record ID change: %v", e)
	}
}
