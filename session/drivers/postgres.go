package drivers

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"
)

// PostgresStore implements session.Store on top of PostgreSQL.
// expiration_time is a timestamptz, so expirations keep microsecond precision.
type PostgresStore struct {
	*sqlStore
}

var postgresDialect = sqlDialect{
	name:           "postgres",
	placeholder:    func(n int) string { return "$" + strconv.Itoa(n) },
	quote:          pq.QuoteIdentifier,
	expirationType: "timestamptz",
	encodeTime:     func(t time.Time) any { return t.UTC() },
	decodeTime: func(src any) (time.Time, error) {
		switch v := src.(type) {
		case time.Time:
			return v.UTC(), nil
		default:
			return time.Time{}, fmt.Errorf("unexpected expiration_time type %T", src)
		}
	},
}

// NewPostgresStore creates a PostgreSQL-backed session store using db.
// The table name is validated here, before any statement is issued.
func NewPostgresStore(db *sql.DB, opts ...StoreOption) (*PostgresStore, error) {
	core, err := newSQLStore(db, postgresDialect, opts)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{sqlStore: core}, nil
}
