package drivers

import (
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	supabasego "github.com/supabase-community/supabase-go"

	"github.com/creastat/sessionstore/session"
	"github.com/creastat/sessionstore/supabase"
)

// StoreOption is a functional option for configuring a session store.
type StoreOption func(*storeConfig)

// storeConfig holds configuration for session stores.
type storeConfig struct {
	tableName      string
	db             *sql.DB
	redisClient    redis.UniversalClient
	keyPrefix      string
	supabaseClient *supabasego.Client
	supabaseConfig *supabase.Config
	logger         *slog.Logger
	now            func() time.Time
}

func newStoreConfig(opts []StoreOption) *storeConfig {
	config := &storeConfig{
		tableName: session.DefaultTableName,
		keyPrefix: defaultKeyPrefix,
	}

	// Apply options
	for _, opt := range opts {
		opt(config)
	}

	if config.logger == nil {
		config.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.now == nil {
		config.now = time.Now
	}
	return config
}

// WithTableName sets the table used by relational stores.
// The name is validated when the store is constructed.
func WithTableName(name string) StoreOption {
	return func(c *storeConfig) {
		c.tableName = name
	}
}

// WithDB sets the connection pool for the SQLite and Postgres stores.
// The pool is owned by the caller and is never closed by the store.
func WithDB(db *sql.DB) StoreOption {
	return func(c *storeConfig) {
		c.db = db
	}
}

// WithRedisClient sets the Redis client for the Redis store.
func WithRedisClient(client redis.UniversalClient) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithKeyPrefix sets the prefix for Redis keys.
func WithKeyPrefix(prefix string) StoreOption {
	return func(c *storeConfig) {
		c.keyPrefix = prefix
	}
}

// WithSupabaseClient sets a ready Supabase client for the Supabase store.
func WithSupabaseClient(client *supabasego.Client) StoreOption {
	return func(c *storeConfig) {
		c.supabaseClient = client
	}
}

// WithSupabaseConfig lets the factory build the Supabase client itself.
func WithSupabaseConfig(cfg supabase.Config) StoreOption {
	return func(c *storeConfig) {
		c.supabaseConfig = &cfg
	}
}

// WithLogger sets the logger. Stores log at debug level only.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(c *storeConfig) {
		c.logger = logger
	}
}

// WithClock overrides the time source used for expiration checks.
func WithClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) {
		c.now = now
	}
}
