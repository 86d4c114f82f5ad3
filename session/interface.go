package session

import "context"

// Store defines the interface for session storage operations.
// Implementations must be safe for concurrent use and must enforce
// expiration themselves in Load.
type Store interface {
	// Save persists the record keyed by its ID.
	// An existing record with the same ID is fully overwritten.
	Save(ctx context.Context, record *Record) error

	// Load retrieves a session by ID.
	// Returns nil if the session is not found or has expired (not an error).
	Load(ctx context.Context, id ID) (*Session, error)

	// Delete deletes a session by ID.
	// Deleting an ID that does not exist is not an error.
	Delete(ctx context.Context, id ID) error
}

// Migrator is implemented by stores that own a schema.
type Migrator interface {
	// Migrate creates the session table if it does not exist.
	// Safe to call on every startup.
	Migrate(ctx context.Context) error
}

// ExpiredDeleter is implemented by stores that can purge expired records on
// request. Stores never run this in the background.
type ExpiredDeleter interface {
	// DeleteExpired removes all expired records and returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
