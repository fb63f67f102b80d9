package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/skyfield-labs/aeromap/internal/geocode/provider"
	"github.com/skyfield-labs/aeromap/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address  TEXT PRIMARY KEY,
	lat      REAL NOT NULL,
	lon      REAL NOT NULL,
	provider TEXT NOT NULL,
	ts       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS facilities (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT NOT NULL,
	lat        REAL NOT NULL,
	lon        REAL NOT NULL,
	provider   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_facilities_name_address ON facilities(name, address);

CREATE TABLE IF NOT EXISTS suppliers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT,
	lat        REAL NOT NULL,
	lon        REAL NOT NULL,
	source     TEXT NOT NULL,
	confidence REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS facility_suppliers (
	facility_id    TEXT NOT NULL REFERENCES facilities(id),
	supplier_id    TEXT NOT NULL REFERENCES suppliers(id),
	distance_miles REAL NOT NULL,
	PRIMARY KEY (facility_id, supplier_id)
);

CREATE INDEX IF NOT EXISTS idx_facility_suppliers_facility ON facility_suppliers(facility_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetGeocode(ctx context.Context, address string) (provider.Result, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT lat, lon, provider FROM geocode_cache WHERE address = ?`,
		address,
	)
	var res provider.Result
	err := row.Scan(&res.Lat, &res.Lon, &res.Provider)
	if err == sql.ErrNoRows {
		return provider.Result{}, false, nil
	}
	if err != nil {
		return provider.Result{}, false, eris.Wrap(err, "sqlite: get geocode")
	}
	return res, true, nil
}

func (s *SQLiteStore) PutGeocode(ctx context.Context, address string, res provider.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO geocode_cache (address, lat, lon, provider, ts) VALUES (?, ?, ?, ?, ?)`,
		address, res.Lat, res.Lon, res.Provider, time.Now().Unix(),
	)
	return eris.Wrap(err, "sqlite: put geocode")
}

func (s *SQLiteStore) GeocodeCacheSize(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM geocode_cache`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: geocode cache size")
}

// SaveFacility inserts the facility or returns the existing id when the same
// name+address pair was saved before.
func (s *SQLiteStore) SaveFacility(ctx context.Context, f *model.Facility) (string, error) {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM facilities WHERE name = ? AND address = ?`,
		f.Name, f.Address,
	).Scan(&existing)
	if err == nil {
		f.ID = existing
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return "", eris.Wrap(err, "sqlite: lookup facility")
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO facilities (id, name, address, lat, lon, provider, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, f.Name, f.Address, f.Lat, f.Lon, f.Provider, now,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert facility")
	}
	f.ID = id
	f.CreatedAt = now
	return id, nil
}

func (s *SQLiteStore) SaveSuppliers(ctx context.Context, facilityID string, suppliers []model.Supplier) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	for i := range suppliers {
		sup := &suppliers[i]
		if sup.ID == "" {
			sup.ID = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO suppliers (id, name, address, lat, lon, source, confidence) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sup.ID, sup.Name, sup.Address, sup.Lat, sup.Lon, sup.Source, sup.Confidence,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert supplier %s", sup.Name)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO facility_suppliers (facility_id, supplier_id, distance_miles) VALUES (?, ?, ?)`,
			facilityID, sup.ID, sup.DistanceMiles,
		); err != nil {
			return eris.Wrapf(err, "sqlite: link supplier %s", sup.Name)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit suppliers")
}

func (s *SQLiteStore) ListSuppliers(ctx context.Context, facilityID string) ([]model.Supplier, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.name, COALESCE(s.address, ''), s.lat, s.lon, fs.distance_miles, s.source, s.confidence
		 FROM suppliers s
		 JOIN facility_suppliers fs ON fs.supplier_id = s.id
		 WHERE fs.facility_id = ?
		 ORDER BY fs.distance_miles ASC`,
		facilityID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list suppliers")
	}
	defer rows.Close()

	var out []model.Supplier
	for rows.Next() {
		var sup model.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Address, &sup.Lat, &sup.Lon,
			&sup.DistanceMiles, &sup.Source, &sup.Confidence); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan supplier")
		}
		out = append(out, sup)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list suppliers iterate")
}

func (s *SQLiteStore) ListFacilities(ctx context.Context) ([]model.Facility, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, lat, lon, provider, created_at FROM facilities ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list facilities")
	}
	defer rows.Close()

	var out []model.Facility
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Address, &f.Lat, &f.Lon, &f.Provider, &f.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan facility")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list facilities iterate")
}
