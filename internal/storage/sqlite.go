// Package storage persists the device's durable state in SQLite: the
// provisioned network identity and the last good weather snapshot, so a
// restart comes back up with something to show.
package storage

import (
	"database/sql"
	"time"

	"github.com/telegauge/telegauge/internal/cache"
	_ "modernc.org/sqlite" // Driver sqlite
)

// identityKey is the settings key holding the provisioned network identity.
const identityKey = "network_identity"

// Repository manages the SQLite database connection.
type Repository struct {
	db *sql.DB
}

// New initializes a new SQLite connection and runs migrations. The device
// is the sole writer, so the pool stays tiny.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Identity returns the stored network identity, empty when unprovisioned.
func (r *Repository) Identity() (string, error) {
	row := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, identityKey)

	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return value, nil
}

// SetIdentity stores or replaces the network identity.
func (r *Repository) SetIdentity(identity string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, identityKey, identity, time.Now())

	return err
}

// ClearIdentity removes the stored network identity.
func (r *Repository) ClearIdentity() error {
	_, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, identityKey)
	return err
}

// SaveWeather persists the latest weather snapshot, replacing the previous one.
func (r *Repository) SaveWeather(snap cache.WeatherSnapshot) error {
	_, err := r.db.Exec(`
		INSERT INTO weather (id, temperature_c, condition_code, fetched_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			temperature_c = excluded.temperature_c,
			condition_code = excluded.condition_code,
			fetched_at = excluded.fetched_at
	`, snap.TemperatureC, snap.ConditionCode, snap.FetchedAt)

	return err
}

// LoadWeather returns the persisted weather snapshot, Valid=false when none exists.
func (r *Repository) LoadWeather() (cache.WeatherSnapshot, error) {
	row := r.db.QueryRow(`SELECT temperature_c, condition_code, fetched_at FROM weather WHERE id = 1`)

	var snap cache.WeatherSnapshot
	err := row.Scan(&snap.TemperatureC, &snap.ConditionCode, &snap.FetchedAt)
	if err == sql.ErrNoRows {
		return cache.WeatherSnapshot{}, nil
	}
	if err != nil {
		return cache.WeatherSnapshot{}, err
	}

	snap.Valid = true
	return snap, nil
}

// ForgetWeather drops the persisted weather snapshot.
func (r *Repository) ForgetWeather() error {
	_, err := r.db.Exec(`DELETE FROM weather WHERE id = 1`)
	return err
}
