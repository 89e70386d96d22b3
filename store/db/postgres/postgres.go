package postgres

import (
	"context"
	"database/sql"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/nightbloom-ai/nightbloom/internal/profile"
	"github.com/nightbloom-ai/nightbloom/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

const latestSchema = `
CREATE TABLE IF NOT EXISTS user_profile (
	user_id INTEGER PRIMARY KEY,
	nickname TEXT NOT NULL DEFAULT '',
	gender TEXT NOT NULL DEFAULT '',
	kinks TEXT NOT NULL DEFAULT '[]',
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);
`

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// Profile writes are user-initiated and low-contention; a small pool
	// keeps resource usage down without hurting responsiveness.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

	// Verify connection is working before returning
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	driver := &DB{
		db:      db,
		profile: profile,
	}
	if err := driver.applyLatestSchema(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed to apply latest schema")
	}

	return driver, nil
}

func (d *DB) applyLatestSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, latestSchema)
	return err
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}
