package testutil

import (
	"time"

	"github.com/creastat/sessionstore/session"
)

// RecordBuilder helps construct session records with fluent chaining.
// Example:
//
//	rec := NewRecordBuilder().Data("user", 1.0).ExpiresIn(time.Hour).Build()
type RecordBuilder struct {
	id        session.ID
	expiresAt *time.Time
	data      map[string]any
}

// NewRecordBuilder creates a builder with a fresh random id and no expiry.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{id: session.NewID(), data: map[string]any{}}
}

// ID overrides the generated identifier (chainable).
func (b *RecordBuilder) ID(id session.ID) *RecordBuilder { b.id = id; return b }

// Data sets a payload key (chainable). Use JSON-shaped values (float64,
// string, bool, []any, map[string]any) so records compare equal after a
// round-trip through a serializing backend.
func (b *RecordBuilder) Data(key string, val any) *RecordBuilder { b.data[key] = val; return b }

// ExpiresAt sets an absolute expiration (chainable). The value is truncated to
// microseconds, the precision relational backends keep.
func (b *RecordBuilder) ExpiresAt(t time.Time) *RecordBuilder {
	t = t.Truncate(time.Microsecond)
	b.expiresAt = &t
	return b
}

// ExpiresIn sets an expiration relative to now; negative values produce an
// already expired record (chainable).
func (b *RecordBuilder) ExpiresIn(d time.Duration) *RecordBuilder {
	return b.ExpiresAt(time.Now().Add(d).UTC())
}

// Build returns the record.
func (b *RecordBuilder) Build() *session.Record {
	data := make(map[string]any, len(b.data))
	for k, v := range b.data {
		data[k] = v
	}
	return session.NewRecord(b.id, b.expiresAt, data)
}
