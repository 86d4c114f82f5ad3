package drivers

import (
	"github.com/creastat/sessionstore"
	"github.com/creastat/sessionstore/session"
	"github.com/creastat/sessionstore/supabase"
)

// StoreType represents the type of session store.
type StoreType string

const (
	StoreTypeMemory   StoreType = "memory"
	StoreTypeSQLite   StoreType = "sqlite"
	StoreTypePostgres StoreType = "postgres"
	StoreTypeRedis    StoreType = "redis"
	StoreTypeSupabase StoreType = "supabase"
)

// NewStore creates a new session.Store based on the given type.
// SQLite and Postgres require WithDB, Redis requires WithRedisClient and
// Supabase requires WithSupabaseClient or WithSupabaseConfig.
func NewStore(storeType StoreType, opts ...StoreOption) (session.Store, error) {
	switch storeType {
	case StoreTypeMemory:
		return NewMemoryStore(opts...), nil

	case StoreTypeSQLite:
		config := newStoreConfig(opts)
		if config.db == nil {
			return nil, sessionstore.ErrInvalidConfig
		}
		store, err := NewSQLiteStore(config.db, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil

	case StoreTypePostgres:
		config := newStoreConfig(opts)
		if config.db == nil {
			return nil, sessionstore.ErrInvalidConfig
		}
		store, err := NewPostgresStore(config.db, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil

	case StoreTypeRedis:
		config := newStoreConfig(opts)
		if config.redisClient == nil {
			return nil, sessionstore.ErrInvalidConfig
		}
		return NewRedisStore(config.redisClient, opts...), nil

	case StoreTypeSupabase:
		config := newStoreConfig(opts)
		client := config.supabaseClient
		if client == nil {
			if config.supabaseConfig == nil {
				return nil, sessionstore.ErrInvalidConfig
			}
			var err error
			client, err = supabase.New(*config.supabaseConfig)
			if err != nil {
				return nil, err
			}
		}
		store, err := NewSupabaseStore(client, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, sessionstore.ErrInvalidStoreType
	}
}
