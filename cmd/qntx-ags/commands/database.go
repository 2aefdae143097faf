package commands

import (
	"database/sql"
	"os"

	"github.com/teranos/qntx-ags/am"
	"github.com/teranos/qntx-ags/db"
	"github.com/teranos/qntx-ags/errors"
	"github.com/teranos/qntx-ags/logger"
)

// openDatabase opens and migrates a database using the specified path.
// If dbPath is empty, it loads from am config.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		cfg, err := am.Load()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load configuration")
		}
		dbPath = cfg.GetDatabasePath()
	}

	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}
	logger.DBInfow("database ready", "path", dbPath)

	return database, nil
}

// loadConfig loads and validates the configuration.
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "invalid configuration"), "run 'qntx-ags am where' to see which file sets it")
	}
	return cfg, nil
}

func envSet(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}
