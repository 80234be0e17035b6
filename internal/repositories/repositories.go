package repositories

import (
	"database/sql"
	"fmt"
)

// sequenced lists the tables backed by a <table>_sequence counter row.
var sequenced = map[string]bool{
	"runs": true,
}

// NextSequence increments and returns the run-style counter for table inside tx.
//
// The counter and the row that consumes it share a transaction so a failed insert never burns a number.
func NextSequence(tx *sql.Tx, table string) (int, error) {
	if !sequenced[table] {
		return 0, fmt.Errorf("no sequence for table %q", table)
	}
	sequenceTable := table + "_sequence"

	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}
	return sequence, nil
}
