// Package sessionstore holds the error taxonomy shared by every session
// backend. Match with errors.Is; backends wrap the underlying cause next to
// the category so both stay reachable.
package sessionstore

import "errors"

// Common errors for session store operations.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
	ErrInvalidTableName = errors.New("invalid table name")
	ErrInvalidRecord    = errors.New("invalid session record")
	ErrInvalidID        = errors.New("invalid session id")
	ErrSerialization    = errors.New("session data serialization failed")
	ErrBackend          = errors.New("session backend failure")
)
