package main

import (
	"database/sql"
	"fmt"
	"time"
)

const schemaVersion = 1

// Fixed width so that started_at sorts lexically.
const journalTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Journal keeps one row per fetch cycle. It never holds the events themselves.
type Journal struct {
	db *sql.DB
}

type CycleRecord struct {
	ID         string
	CalendarID string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Events     int
	Pages      int
	Skipped    int
	Error      string
}

const (
	cycleStatusOK    = "ok"
	cycleStatusError = "error"
)

func OpenJournal(filename string) (*Journal, error) {
	db, err := openDB(filename)
	if err != nil {
		return nil, err
	}
	if err := dbInit(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func dbInit(db *sql.DB) error {
	var dbVersion int
	err := db.QueryRow("SELECT version FROM db_version WHERE name='roomsync'").Scan(&dbVersion)
	if err != nil {
		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS db_version (
			name TEXT PRIMARY KEY,
			version INTEGER
		)`)
		if err != nil {
			return fmt.Errorf("error creating db_version table: %w", err)
		}
		_, err = db.Exec(`INSERT OR IGNORE INTO db_version (name, version) VALUES ('roomsync', 0)`)
		if err != nil {
			return fmt.Errorf("error initializing db_version table: %w", err)
		}
		dbVersion = 0
	}

	if dbVersion == 0 {
		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sync_cycles (
			cycle_id TEXT PRIMARY KEY,
			calendar_id TEXT,
			started_at TEXT,
			finished_at TEXT,
			status TEXT,
			events INTEGER,
			pages INTEGER,
			skipped INTEGER,
			error_message TEXT
		)`)
		if err != nil {
			return fmt.Errorf("error creating sync_cycles table: %w", err)
		}
		_, err = db.Exec(`CREATE INDEX IF NOT EXISTS sync_cycles_started ON sync_cycles (started_at)`)
		if err != nil {
			return fmt.Errorf("error creating sync_cycles index: %w", err)
		}

		_, err = db.Exec(`UPDATE db_version SET version = ? WHERE name = 'roomsync'`, schemaVersion)
		if err != nil {
			return fmt.Errorf("error updating db_version table: %w", err)
		}
	}
	return nil
}

func (j *Journal) RecordCycle(rec CycleRecord) error {
	var errMsg sql.NullString
	if rec.Error != "" {
		errMsg = sql.NullString{String: rec.Error, Valid: true}
	}
	_, err := j.db.Exec(`INSERT OR REPLACE INTO sync_cycles
		(cycle_id, calendar_id, started_at, finished_at, status, events, pages, skipped, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CalendarID,
		rec.StartedAt.UTC().Format(journalTimeFormat), rec.FinishedAt.UTC().Format(journalTimeFormat),
		rec.Status, rec.Events, rec.Pages, rec.Skipped, errMsg)
	if err != nil {
		return fmt.Errorf("failed to record cycle %s: %w", rec.ID, err)
	}
	return nil
}

// RecentCycles returns up to limit cycles, newest first.
func (j *Journal) RecentCycles(limit int) ([]CycleRecord, error) {
	rows, err := j.db.Query(`SELECT cycle_id, calendar_id, started_at, finished_at, status, events, pages, skipped, error_message
		FROM sync_cycles ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRecord
	for rows.Next() {
		var (
			rec               CycleRecord
			started, finished string
			errMsg            sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.CalendarID, &started, &finished, &rec.Status,
			&rec.Events, &rec.Pages, &rec.Skipped, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan sync cycle: %w", err)
		}
		if rec.StartedAt, err = time.Parse(journalTimeFormat, started); err != nil {
			return nil, fmt.Errorf("cycle %s: bad started_at: %w", rec.ID, err)
		}
		if rec.FinishedAt, err = time.Parse(journalTimeFormat, finished); err != nil {
			return nil, fmt.Errorf("cycle %s: bad finished_at: %w", rec.ID, err)
		}
		rec.Error = errMsg.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}
