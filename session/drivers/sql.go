package drivers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/creastat/sessionstore"
	"github.com/creastat/sessionstore/session"
)

// sqlDialect captures what differs between SQL engines.
type sqlDialect struct {
	name string
	// placeholder returns the bind marker for the n-th (1-based) argument.
	placeholder func(n int) string
	// quote quotes an already validated identifier.
	quote func(ident string) string
	// expirationType is the column type of expiration_time.
	expirationType string
	// encodeTime and decodeTime convert expiration values to and from the
	// column representation.
	encodeTime func(t time.Time) any
	decodeTime func(src any) (time.Time, error)
}

// sqlQueries are rendered once per store; only the table name is interpolated.
type sqlQueries struct {
	migrate       string
	save          string
	load          string
	delete        string
	deleteExpired string
}

// sqlStore is the engine-independent core of the relational stores.
type sqlStore struct {
	db      *sql.DB
	table   string
	dialect sqlDialect
	queries sqlQueries
	now     func() time.Time
	logger  *slog.Logger
}

func newSQLStore(db *sql.DB, dialect sqlDialect, opts []StoreOption) (*sqlStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: %s store requires a database handle", sessionstore.ErrInvalidConfig, dialect.name)
	}
	config := newStoreConfig(opts)
	if err := session.ValidateTableName(config.tableName); err != nil {
		return nil, err
	}

	return &sqlStore{
		db:      db,
		table:   config.tableName,
		dialect: dialect,
		queries: buildSQLQueries(dialect, config.tableName),
		now:     config.now,
		logger:  config.logger,
	}, nil
}

func buildSQLQueries(d sqlDialect, table string) sqlQueries {
	t := d.quote(table)
	p := d.placeholder
	return sqlQueries{
		migrate: fmt.Sprintf(`create table if not exists %s (
    id text primary key not null,
    expiration_time %s null,
    data text not null
)`, t, d.expirationType),
		save: fmt.Sprintf(`insert into %s (id, expiration_time, data) values (%s, %s, %s)
on conflict(id) do update set
    expiration_time = excluded.expiration_time,
    data = excluded.data`, t, p(1), p(2), p(3)),
		load: fmt.Sprintf(`select id, expiration_time, data from %s
where id = %s and (expiration_time is null or expiration_time > %s)`, t, p(1), p(2)),
		delete:        fmt.Sprintf(`delete from %s where id = %s`, t, p(1)),
		deleteExpired: fmt.Sprintf(`delete from %s where expiration_time <= %s`, t, p(1)),
	}
}

// TableName returns the validated table name.
func (s *sqlStore) TableName() string {
	return s.table
}

// Migrate implements session.Migrator.
func (s *sqlStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.queries.migrate); err != nil {
		return s.backendErr("migrate", err)
	}
	s.logger.Debug("session table ready", "store", s.dialect.name, "table", s.table)
	return nil
}

// Save implements session.Store.
func (s *sqlStore) Save(ctx context.Context, record *session.Record) error {
	if record == nil {
		return sessionstore.ErrInvalidRecord
	}
	data, err := encodeData(record.Data)
	if err != nil {
		return err
	}
	var expiration any
	if record.ExpirationTime != nil {
		expiration = s.dialect.encodeTime(*record.ExpirationTime)
	}

	if _, err := s.db.ExecContext(ctx, s.queries.save, record.ID.String(), expiration, data); err != nil {
		return s.backendErr("save", err)
	}
	return nil
}

// Load implements session.Store.
// Expired rows are filtered by the engine and never read back.
func (s *sqlStore) Load(ctx context.Context, id session.ID) (*session.Session, error) {
	var (
		rawID      string
		expiration any
		data       string
	)
	row := s.db.QueryRowContext(ctx, s.queries.load, id.String(), s.dialect.encodeTime(s.now()))
	if err := row.Scan(&rawID, &expiration, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found or expired
		}
		return nil, s.backendErr("load", err)
	}

	storedID, err := session.ParseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("session: %s load: %w", s.dialect.name, err)
	}
	record := session.Record{ID: storedID}
	if expiration != nil {
		t, err := s.dialect.decodeTime(expiration)
		if err != nil {
			return nil, s.backendErr("load", err)
		}
		record.ExpirationTime = &t
	}
	if record.Data, err = decodeData(data); err != nil {
		return nil, err
	}
	return session.NewSession(record), nil
}

// Delete implements session.Store.
func (s *sqlStore) Delete(ctx context.Context, id session.ID) error {
	if _, err := s.db.ExecContext(ctx, s.queries.delete, id.String()); err != nil {
		return s.backendErr("delete", err)
	}
	return nil
}

// DeleteExpired implements session.ExpiredDeleter.
func (s *sqlStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.queries.deleteExpired, s.dialect.encodeTime(s.now()))
	if err != nil {
		return 0, s.backendErr("delete expired", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.backendErr("delete expired", err)
	}
	s.logger.Debug("expired sessions deleted", "store", s.dialect.name, "table", s.table, "count", n)
	return n, nil
}

func (s *sqlStore) backendErr(op string, err error) error {
	return fmt.Errorf("session: %s %s: %w: %w", s.dialect.name, op, sessionstore.ErrBackend, err)
}

// encodeData serializes a payload to the text stored in the data column.
func encodeData(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session: encode data: %w: %w", sessionstore.ErrSerialization, err)
	}
	return string(b), nil
}

// decodeData is the inverse of encodeData.
func decodeData(s string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, fmt.Errorf("session: decode data: %w: %w", sessionstore.ErrSerialization, err)
	}
	return data, nil
}
