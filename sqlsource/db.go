// Package sqlsource loads cascading configuration records from a SQL
// database instead of a directory of .ion files.
//
// Records live in a single ion_config_records table; each row holds one or
// more top-level Ion values. SQLite (development) and PostgreSQL
// (production) are supported via sqlx.
package sqlsource

import (
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Config access is a burst of reads at startup (load every record, compile
// once) and the rare insert afterwards. A couple of connections absorb the
// burst, and idle ones are dropped quickly so long-lived consumers do not
// sit on server connections they touched once.
const (
	poolMaxOpen  = 4
	poolMaxIdle  = 1
	poolIdleTime = time.Minute
)

// Open connects to the records database named by a URL; the scheme selects
// the driver. sqlite://path/to/file.db (or sqlite:///absolute/path) opens a
// local file, postgres://... is passed to the postgres driver unchanged.
func Open(dbURL string) (*sqlx.DB, error) {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	var driver, dsn string
	switch parsed.Scheme {
	case "postgres":
		driver = "postgres"
		dsn = dbURL
	case "sqlite":
		// url.Parse puts the first segment of a relative path in Host, so
		// sqlite://file.db and sqlite:///absolute/path both reassemble here
		driver = "sqlite3"
		dsn = parsed.Host + parsed.Path
		if parsed.RawQuery != "" {
			dsn += "?" + parsed.RawQuery
		}
	default:
		return nil, fmt.Errorf("unsupported database scheme %q (want sqlite or postgres)", parsed.Scheme)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	db.SetMaxOpenConns(poolMaxOpen)
	db.SetMaxIdleConns(poolMaxIdle)
	db.SetConnMaxIdleTime(poolIdleTime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
