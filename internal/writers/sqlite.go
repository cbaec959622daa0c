package writers

import (
	"context"
	"database/sql"
	"fmt"

	"cellscope/internal/report"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS reports (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id         TEXT    NOT NULL,
	frame              INTEGER NOT NULL,
	timestamp          TEXT    NOT NULL,
	cells_detected     INTEGER NOT NULL,
	microbe            TEXT    NOT NULL,
	disease            TEXT    NOT NULL,
	symptoms           TEXT    NOT NULL,
	risk               TEXT    NOT NULL,
	dna_sequence       TEXT    NOT NULL,
	reverse_complement TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_session ON reports (session_id, frame);`

const sqliteInsert = `INSERT INTO reports
	(session_id, frame, timestamp, cells_detected, microbe, disease, symptoms, risk, dna_sequence, reverse_complement)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteSink archives records into a `reports` table. Unlike the CSV log the
// database is never truncated; sessions are told apart by session_id.
type SQLiteSink struct {
	sessionID string
	db        *sql.DB
	insert    *sql.Stmt
}

// OpenSQLite opens (or creates) the database at path and prepares the schema.
func OpenSQLite(ctx context.Context, path, sessionID string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	stmt, err := db.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare %s: %w", path, err)
	}
	return &SQLiteSink{sessionID: sessionID, db: db, insert: stmt}, nil
}

func (s *SQLiteSink) Append(r report.Record) error {
	v := ToAPI(s.sessionID, r)
	_, err := s.insert.Exec(
		v.SessionID, v.Frame, v.Timestamp, v.CellsDetected,
		v.Microbe, v.Disease, v.Symptoms, v.Risk,
		v.DNASequence, v.ReverseComplement,
	)
	return err
}

func (s *SQLiteSink) Close() error {
	err := s.insert.Close()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}
