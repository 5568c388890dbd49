package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite holds every series in one database file, one row per
// (series, day, key).
type SQLite struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// OpenSQLite opens (creating if needed) the history database at dbPath.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	db := &SQLite{writeDB: writeDB}
	if err := db.init(); err != nil {
		db.Close()
		return nil, err
	}

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	db.readDB = readDB
	return db, nil
}

func (db *SQLite) init() error {
	_, err := db.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS daily_counts (
			series TEXT NOT NULL,
			day    TEXT NOT NULL,
			key    TEXT NOT NULL,
			count  INTEGER NOT NULL CHECK (count > 0),
			PRIMARY KEY (series, day, key)
		);
		CREATE INDEX IF NOT EXISTS idx_daily_counts_day ON daily_counts(series, day);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Close releases both connections.
func (db *SQLite) Close() error {
	var first error
	for _, c := range []*sql.DB{db.readDB, db.writeDB} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Series returns a Store view over the named series.
func (db *SQLite) Series(name string) Store {
	return &sqliteSeries{db: db, name: name}
}

// LastRun returns the time of the last successful Save, if any.
func (db *SQLite) LastRun() (time.Time, error) {
	var value string
	err := db.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_run'").Scan(&value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

type sqliteSeries struct {
	db   *SQLite
	name string
}

func (s *sqliteSeries) Load() (Series, error) {
	rows, err := s.db.readDB.Query(
		"SELECT day, key, count FROM daily_counts WHERE series = ? ORDER BY day, key", s.name)
	if err != nil {
		return Series{}, fmt.Errorf("querying %s history: %w", s.name, err)
	}
	defer rows.Close()

	out := Series{}
	for rows.Next() {
		var (
			day, key string
			count    int
		)
		if err := rows.Scan(&day, &key, &count); err != nil {
			return Series{}, fmt.Errorf("%w: scanning %s history: %v", ErrCorrupt, s.name, err)
		}
		if _, err := ParseDay(day); err != nil || count <= 0 {
			continue
		}
		if out[day] == nil {
			out[day] = Counts{}
		}
		out[day][key] = count
	}
	if err := rows.Err(); err != nil {
		return Series{}, fmt.Errorf("reading %s history: %w", s.name, err)
	}
	return out, nil
}

// Save replaces the whole series in one transaction, so a failure leaves
// the previous contents intact.
func (s *sqliteSeries) Save(series Series) error {
	tx, err := s.db.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM daily_counts WHERE series = ?", s.name); err != nil {
		return fmt.Errorf("clearing %s history: %w", s.name, err)
	}

	stmt, err := tx.Prepare("INSERT INTO daily_counts (series, day, key, count) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, day := range series.Dates() {
		for key, count := range series[day] {
			if count <= 0 {
				continue
			}
			if _, err := stmt.Exec(s.name, day, key, count); err != nil {
				return fmt.Errorf("saving %s %s/%s: %w", s.name, day, key, err)
			}
		}
	}

	_, err = tx.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_run', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording last run: %w", err)
	}

	return tx.Commit()
}
