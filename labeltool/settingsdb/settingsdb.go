package settingsdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
	"gorm.io/gorm"
)

// Package settingsdb remembers things between sessions: where the user was in each
// sequence, and which bulk ID changes have been made.

// VariableKey is the name of a global setting
type VariableKey string

const (
	VarLastSequence VariableKey = "LastSequence" // Sequence info file that was opened most recently
)

type SettingsDB struct {
	Log logs.Log
	DB  *gorm.DB
}

// Open or create the settings DB
func Open(logger logs.Log, dbFilename string) (*SettingsDB, error) {
	os.MkdirAll(filepath.Dir(dbFilename), 0770)
	db, err := dbh.OpenDB(logger, dbh.MakeSqliteConfig(dbFilename), Migrations(logger), 0)
	if err != nil {
		return nil, fmt.Errorf("Failed to open database %v: %w", dbFilename, err)
	}
	return &SettingsDB{
		Log: logger,
		DB:  db,
	}, nil
}

// Close the underlying database connection
func (s *SettingsDB) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetVariable returns the value of a variable, or "" if it has not been set
func (s *SettingsDB) GetVariable(key VariableKey) (string, error) {
	v := Variable{}
	if err := s.DB.Where("key = ?", string(key)).Limit(1).Find(&v).Error; err != nil {
		return "", err
	}
	return v.Value, nil
}

func (s *SettingsDB) SetVariable(key VariableKey, value string) error {
	return s.DB.Save(&Variable{Key: string(key), Value: value}).Error
}

// SavePosition remembers the current row of a sequence
func (s *SettingsDB) SavePosition(sequence string, row int) error {
	return s.DB.Save(&SequencePosition{
		Sequence:  sequence,
		RowIndex:  row,
		UpdatedAt: dbh.MakeIntTime(time.Now()),
	}).Error
}

// Position returns the remembered row of a sequence.
// ok is false if nothing was remembered.
func (s *SettingsDB) Position(sequence string) (row int, ok bool, err error) {
	pos := []SequencePosition{}
	if err := s.DB.Where("sequence = ?", sequence).Find(&pos).Error; err != nil {
		return 0, false, err
	}
	if len(pos) == 0 {
		return 0, false, nil
	}
	return pos[0].RowIndex, true, nil
}

// RecordIDChange adds an audit record
func (s *SettingsDB) RecordIDChange(change *IDChange) error {
	if change.Time == 0 {
		change.Time = dbh.MakeIntTime(time.Now())
	}
	return s.DB.Create(change).Error
}

// IDChanges returns the audit records of a sequence, oldest first
func (s *SettingsDB) IDChanges(sequence string) ([]IDChange, error) {
	changes := []IDChange{}
	err := s.DB.Where("sequence = ?", sequence).Order("id").Find(&changes).Error
	return changes, err
}
