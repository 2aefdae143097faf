package db

import (
	"strings"

	"github.com/teranos/qntx-ags/errors"
)

// ErrDatabaseClosed reports use of a database after Close.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err comes from a closed database. A watch session that is
// shutting down can still be storing a file; that failure is expected and not worth reporting.
// database/sql returns an unexported error for this, so its message is matched as well.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}
