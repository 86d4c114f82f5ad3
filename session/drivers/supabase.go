package drivers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	supabasego "github.com/supabase-community/supabase-go"

	"github.com/creastat/sessionstore"
	"github.com/creastat/sessionstore/session"
)

// SupabaseStore implements session.Store over a Postgres table exposed
// through Supabase's PostgREST API. The table must already exist; see
// supabase.SchemaSQL.
type SupabaseStore struct {
	client *supabasego.Client
	table  string
	now    func() time.Time
	logger *slog.Logger
}

// supabaseRow mirrors one row of the session table.
type supabaseRow struct {
	ID             string     `json:"id"`
	ExpirationTime *time.Time `json:"expiration_time"`
	Data           string     `json:"data"`
}

// NewSupabaseStore creates a Supabase-backed session store.
// The table name is validated here, before any request is made.
func NewSupabaseStore(client *supabasego.Client, opts ...StoreOption) (*SupabaseStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: supabase store requires a client", sessionstore.ErrInvalidConfig)
	}
	config := newStoreConfig(opts)
	if err := session.ValidateTableName(config.tableName); err != nil {
		return nil, err
	}
	return &SupabaseStore{
		client: client,
		table:  config.tableName,
		now:    config.now,
		logger: config.logger,
	}, nil
}

// Save implements session.Store.
func (s *SupabaseStore) Save(ctx context.Context, record *session.Record) error {
	if record == nil {
		return sessionstore.ErrInvalidRecord
	}
	data, err := encodeData(record.Data)
	if err != nil {
		return err
	}
	row := supabaseRow{ID: record.ID.String(), Data: data}
	if record.ExpirationTime != nil {
		t := record.ExpirationTime.UTC()
		row.ExpirationTime = &t
	}

	_, _, err = s.client.From(s.table).
		Upsert(row, "id", "minimal", "").
		Execute()
	return s.wrap("save", err)
}

// Load implements session.Store.
// Expired rows are filtered by PostgREST and never returned.
func (s *SupabaseStore) Load(ctx context.Context, id session.ID) (*session.Session, error) {
	now := s.now().UTC().Format(time.RFC3339Nano)

	var rows []supabaseRow
	_, err := s.client.From(s.table).
		Select("id,expiration_time,data", "", false).
		Eq("id", id.String()).
		Or(fmt.Sprintf(`expiration_time.is.null,expiration_time.gt."%s"`, now), "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, s.wrap("load", err)
	}
	if len(rows) == 0 {
		return nil, nil // Not found or expired
	}

	row := rows[0]
	storedID, err := session.ParseID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("session: supabase load: %w", err)
	}
	record := session.Record{ID: storedID, ExpirationTime: row.ExpirationTime}
	if record.Data, err = decodeData(row.Data); err != nil {
		return nil, err
	}
	return session.NewSession(record), nil
}

// Delete implements session.Store.
func (s *SupabaseStore) Delete(ctx context.Context, id session.ID) error {
	_, _, err := s.client.From(s.table).
		Delete("minimal", "").
		Eq("id", id.String()).
		Execute()
	return s.wrap("delete", err)
}

func (s *SupabaseStore) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	s.logger.Debug("supabase request failed", "op", op, "table", s.table, "error", err)
	return fmt.Errorf("session: supabase %s: %w: %w", op, sessionstore.ErrBackend, err)
}
