package drivers

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore implements session.Store on top of a SQLite database.
// expiration_time holds Unix microseconds, matching the precision of
// timestamptz and covering every year up to 9999.
type SQLiteStore struct {
	*sqlStore
}

var sqliteDialect = sqlDialect{
	name:           "sqlite",
	placeholder:    func(int) string { return "?" },
	quote:          func(ident string) string { return `"` + ident + `"` },
	expirationType: "integer",
	encodeTime:     func(t time.Time) any { return t.UnixMicro() },
	decodeTime: func(src any) (time.Time, error) {
		switch v := src.(type) {
		case int64:
			return time.UnixMicro(v).UTC(), nil
		default:
			return time.Time{}, fmt.Errorf("unexpected expiration_time type %T", src)
		}
	},
}

// NewSQLiteStore creates a SQLite-backed session store using db.
// The table name is validated here, before any statement is issued.
func NewSQLiteStore(db *sql.DB, opts ...StoreOption) (*SQLiteStore, error) {
	core, err := newSQLStore(db, sqliteDialect, opts)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{sqlStore: core}, nil
}
