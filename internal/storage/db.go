package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"carburants/internal"
)

// DB is the accumulated price history, keyed by (jour, id_station,
// carburant). Merging a daily batch upserts each observation; on conflict
// the row with the later update timestamp wins.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS releves (
  jour TEXT NOT NULL,
  id_station TEXT NOT NULL,
  carburant TEXT NOT NULL,
  id TEXT,
  date TEXT NOT NULL,
  cp TEXT,
  commune TEXT,
  adresse TEXT,
  prix REAL NOT NULL,
  latitude REAL,
  longitude REAL,
  departement TEXT,
  PRIMARY KEY (jour, id_station, carburant)
);
CREATE INDEX IF NOT EXISTS idx_releves_jour ON releves(jour);
CREATE INDEX IF NOT EXISTS idx_releves_carburant ON releves(carburant);
`
	_, err := d.conn.Exec(schema)
	return err
}

// Merge upserts a cleaned batch into the history. Dates are stored as UTC
// RFC 3339 text so the conflict clause can compare them lexicographically.
// Rows without a price, date or day key are skipped; they cannot come out
// of the cleaning pipeline.
func (d *DB) Merge(rows []internal.Releve) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO releves (jour, id_station, carburant, id, date, cp, commune, adresse, prix, latitude, longitude, departement)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(jour, id_station, carburant) DO UPDATE SET
  id=excluded.id,
  date=excluded.date,
  cp=excluded.cp,
  commune=excluded.commune,
  adresse=excluded.adresse,
  prix=excluded.prix,
  latitude=excluded.latitude,
  longitude=excluded.longitude,
  departement=excluded.departement
WHERE excluded.date >= releves.date
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	merged := 0
	for _, r := range rows {
		if r.Prix == nil || r.Date == nil || r.Jour == nil || r.Carburant == nil {
			continue
		}
		if _, err := stmt.Exec(
			*r.Jour, orEmpty(r.IDStation), *r.Carburant,
			r.ID, r.Date.UTC().Format(time.RFC3339),
			r.CP, r.Commune, r.Adresse, *r.Prix, r.Latitude, r.Longitude, r.Departement,
		); err != nil {
			return 0, err
		}
		merged++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return merged, nil
}

// History returns the full accumulated table ordered by update time.
func (d *DB) History() ([]internal.Releve, error) {
	rows, err := d.conn.Query(`
SELECT jour, id_station, carburant, id, date, cp, commune, adresse, prix, latitude, longitude, departement
FROM releves ORDER BY date ASC, jour ASC, id_station ASC, carburant ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Releve
	for rows.Next() {
		var r internal.Releve
		var jour, idStation, carburant, date string
		var prix float64
		if err := rows.Scan(
			&jour, &idStation, &carburant, &r.ID, &date,
			&r.CP, &r.Commune, &r.Adresse, &prix, &r.Latitude, &r.Longitude, &r.Departement,
		); err != nil {
			return nil, err
		}
		r.Jour = &jour
		r.Carburant = &carburant
		r.Prix = &prix
		if idStation != "" {
			r.IDStation = &idStation
		}
		if t, err := time.Parse(time.RFC3339, date); err == nil {
			r.Date = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DailyMeans aggregates the history into one mean price per day and fuel.
func (d *DB) DailyMeans() ([]internal.MoyenneJournaliere, error) {
	rows, err := d.conn.Query(`
SELECT jour, carburant, ROUND(AVG(prix), 3)
FROM releves GROUP BY jour, carburant ORDER BY jour ASC, carburant ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.MoyenneJournaliere
	for rows.Next() {
		var m internal.MoyenneJournaliere
		if err := rows.Scan(&m.Jour, &m.Carburant, &m.PrixMoyen); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of accumulated observations.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.conn.QueryRow(`SELECT COUNT(*) FROM releves`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count releves: %w", err)
	}
	return n, nil
}

func orEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
