package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/nightbloom-ai/nightbloom/internal/profile"
	"github.com/nightbloom-ai/nightbloom/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// latestSchema is the full schema for new installations. This subsystem
// owns a single table, so there is no incremental migration ladder.
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
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// busy_timeout smooths over writer contention from the editor's
	// save path; WAL keeps the bootstrap read from blocking on it.
	db, err := sql.Open("sqlite", profile.DSN+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
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
