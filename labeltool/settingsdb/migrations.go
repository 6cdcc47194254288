package settingsdb

import (
	"github.com/BurntSushi/migration"
	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
)

func Migrations(log logs.Log) []migration.Migrator {
	migs := []migration.Migrator{}
	idx := 0

	migs = append(migs, dbh.MakeMigrationFromSQL(log, &idx,
		`
		CREATE TABLE variable(
			key TEXT PRIMARY KEY,
			value TEXT
		);

		CREATE TABLE sequence_position(
			sequence TEXT PRIMARY KEY,
			row_index INT NOT NULL,
			updated_at INT NOT NULL
		);
	`))

	migs = append(migs, dbh.MakeMigrationFromSQL(log, &idx,
		`
		CREATE TABLE id_change(
			id INTEGER PRIMARY KEY,
			time INT NOT NULL,
			sequence TEXT NOT NULL,
			old_id INT NOT NULL,
			new_id INT NOT NULL,
			row_start INT NOT NULL,
			row_end INT NOT NULL,
			success INT NOT NULL,
			error TEXT
		);
		CREATE INDEX idx_id_change_sequence ON id_change(sequence);
	`))

	return migs
}
