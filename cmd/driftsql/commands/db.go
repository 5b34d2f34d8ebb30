package commands

import (
	"database/sql"
	"errors"

	// Database drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/driftsql/driftsql/history"
	"github.com/driftsql/driftsql/internal/config"
	"github.com/driftsql/driftsql/internal/debug"
)

// ErrNoDatabaseURL indicates a command needing a database connection was run
// without DATABASE_URL configured.
var ErrNoDatabaseURL = errors.New("no database URL configured, set DATABASE_URL or database_url in .driftsql.yaml")

func driverName(provider string) string {
	switch provider {
	case "postgres", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return provider
	}
}

// openHistory connects to the configured database and wraps it in a history
// store. The caller owns the returned *sql.DB.
func openHistory(cfg *config.Config) (*sql.DB, *history.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, ErrNoDatabaseURL
	}
	db, err := sql.Open(driverName(cfg.Provider), cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store, err := history.NewStore(db, cfg.Provider)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	debug.Debug("connected to database", "provider", cfg.Provider)
	return db, store, nil
}
