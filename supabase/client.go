// Package supabase builds the Supabase client used by the PostgREST-backed
// session store and renders the DDL that store expects.
package supabase

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/supabase-community/supabase-go"

	"github.com/creastat/sessionstore"
	"github.com/creastat/sessionstore/session"
)

// Config holds Supabase connection configuration
type Config struct {
	URL    string
	APIKey string
	Schema string // Default: public
}

// New creates a new Supabase client
func New(cfg Config) (*supabase.Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: supabase URL is required", sessionstore.ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: supabase API key is required", sessionstore.ErrInvalidConfig)
	}

	var opts *supabase.ClientOptions
	if cfg.Schema != "" {
		opts = &supabase.ClientOptions{Schema: cfg.Schema}
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

// SchemaSQL returns the statement that creates the session table. PostgREST
// cannot run DDL, so it has to go through the project's migrations.
func SchemaSQL(table string) (string, error) {
	if err := session.ValidateTableName(table); err != nil {
		return "", err
	}
	return fmt.Sprintf(`create table if not exists %s (
    id text primary key not null,
    expiration_time timestamptz null,
    data text not null
)`, pq.QuoteIdentifier(table)), nil
}
