package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/skyfield-labs/aeromap/internal/geocode/provider"
	"github.com/skyfield-labs/aeromap/internal/model"
)

// Pool abstracts pgxpool.Pool so the store can be tested with pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address  TEXT PRIMARY KEY,
	lat      DOUBLE PRECISION NOT NULL,
	lon      DOUBLE PRECISION NOT NULL,
	provider TEXT NOT NULL,
	ts       BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS facilities (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT NOT NULL,
	lat        DOUBLE PRECISION NOT NULL,
	lon        DOUBLE PRECISION NOT NULL,
	provider   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, address)
);

CREATE TABLE IF NOT EXISTS suppliers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT,
	lat        DOUBLE PRECISION NOT NULL,
	lon        DOUBLE PRECISION NOT NULL,
	source     TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS facility_suppliers (
	facility_id    TEXT NOT NULL REFERENCES facilities(id),
	supplier_id    TEXT NOT NULL REFERENCES suppliers(id),
	distance_miles DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (facility_id, supplier_id)
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetGeocode(ctx context.Context, address string) (provider.Result, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT lat, lon, provider FROM geocode_cache WHERE address = $1`,
		address,
	)
	var res provider.Result
	err := row.Scan(&res.Lat, &res.Lon, &res.Provider)
	if errors.Is(err, pgx.ErrNoRows) {
		return provider.Result{}, false, nil
	}
	if err != nil {
		return provider.Result{}, false, eris.Wrap(err, "postgres: get geocode")
	}
	return res, true, nil
}

func (s *PostgresStore) PutGeocode(ctx context.Context, address string, res provider.Result) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO geocode_cache (address, lat, lon, provider, ts) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (address) DO UPDATE SET lat = $2, lon = $3, provider = $4, ts = $5`,
		address, res.Lat, res.Lon, res.Provider, time.Now().Unix(),
	)
	return eris.Wrap(err, "postgres: put geocode")
}

func (s *PostgresStore) GeocodeCacheSize(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM geocode_cache`).Scan(&n)
	return n, eris.Wrap(err, "postgres: geocode cache size")
}

func (s *PostgresStore) SaveFacility(ctx context.Context, f *model.Facility) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	// On conflict the insert is a no-op; fetch the surviving row's id.
	row := s.pool.QueryRow(ctx,
		`WITH ins AS (
			INSERT INTO facilities (id, name, address, lat, lon, provider, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name, address) DO NOTHING
			RETURNING id
		)
		SELECT id FROM ins
		UNION ALL
		SELECT id FROM facilities WHERE name = $2 AND address = $3
		LIMIT 1`,
		id, f.Name, f.Address, f.Lat, f.Lon, f.Provider, now,
	)
	var got string
	if err := row.Scan(&got); err != nil {
		return "", eris.Wrap(err, "postgres: save facility")
	}
	f.ID = got
	return got, nil
}

func (s *PostgresStore) SaveSuppliers(ctx context.Context, facilityID string, suppliers []model.Supplier) error {
	for i := range suppliers {
		sup := &suppliers[i]
		if sup.ID == "" {
			sup.ID = uuid.New().String()
		}
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO suppliers (id, name, address, lat, lon, source, confidence)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET name = $2, address = $3, lat = $4, lon = $5, source = $6, confidence = $7`,
			sup.ID, sup.Name, sup.Address, sup.Lat, sup.Lon, sup.Source, sup.Confidence,
		); err != nil {
			return eris.Wrapf(err, "postgres: insert supplier %s", sup.Name)
		}
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO facility_suppliers (facility_id, supplier_id, distance_miles)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (facility_id, supplier_id) DO UPDATE SET distance_miles = $3`,
			facilityID, sup.ID, sup.DistanceMiles,
		); err != nil {
			return eris.Wrapf(err, "postgres: link supplier %s", sup.Name)
		}
	}
	return nil
}

func (s *PostgresStore) ListSuppliers(ctx context.Context, facilityID string) ([]model.Supplier, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT s.id, s.name, COALESCE(s.address, ''), s.lat, s.lon, fs.distance_miles, s.source, s.confidence
		 FROM suppliers s
		 JOIN facility_suppliers fs ON fs.supplier_id = s.id
		 WHERE fs.facility_id = $1
		 ORDER BY fs.distance_miles ASC`,
		facilityID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list suppliers")
	}
	defer rows.Close()

	var out []model.Supplier
	for rows.Next() {
		var sup model.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Address, &sup.Lat, &sup.Lon,
			&sup.DistanceMiles, &sup.Source, &sup.Confidence); err != nil {
			return nil, eris.Wrap(err, "postgres: scan supplier")
		}
		out = append(out, sup)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list suppliers iterate")
}

func (s *PostgresStore) ListFacilities(ctx context.Context) ([]model.Facility, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, address, lat, lon, provider, created_at FROM facilities ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list facilities")
	}
	defer rows.Close()

	var out []model.Facility
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Address, &f.Lat, &f.Lon, &f.Provider, &f.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan facility")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list facilities iterate")
}
