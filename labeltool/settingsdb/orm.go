package settingsdb

import "github.com/cyclopcam/dbh"

// BaseModel is our base class for a GORM model.
// The default GORM Model uses int, but we prefer int64
type BaseModel struct {
	ID int64 `gorm:"primaryKey" json:"id"`
}

type Variable struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `json:"value"`
}

// SequencePosition is the last row that the user was looking at in a sequence
type SequencePosition struct {
	Sequence  string      `gorm:"primaryKey" json:"sequence"` // Absolute path of the sequence info file
	RowIndex  int         `json:"rowIndex"`
	UpdatedAt dbh.IntTime `json:"updatedAt"`
}

// IDChange is an audit record of a bulk ID rename
type IDChange struct {
	BaseModel
	Time     dbh.IntTime `json:"time"`
	Sequence string      `json:"sequence"`
	OldID    int64       `json:"oldID"`
	NewID    int64       `json:"newID"`
	RowStart int         `json:"rowStart"`
	RowEnd   int         `json:"rowEnd"` // Exclusive
	Success  bool        `json:"success"`
	Error    string      `json:"error" gorm:"default:null"`
}
