package session

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/creastat/sessionstore"
)

// ID identifies a session. It is comparable and safe to use as a map key.
type ID uuid.UUID

// NewID returns a random session identifier.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses the textual form produced by ID.String.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w %q: %w", sessionstore.ErrInvalidID, s, err)
	}
	return ID(u), nil
}

// String returns the canonical textual form of the identifier.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Record is the unit of persistence handed to Store.Save.
//
// A nil ExpirationTime means the record never expires. Data is an opaque
// payload; every backend that persists out of process encodes it as JSON.
type Record struct {
	ID             ID
	ExpirationTime *time.Time
	Data           map[string]any
}

// NewRecord builds a record for id with the given expiry and payload.
func NewRecord(id ID, expiresAt *time.Time, data map[string]any) *Record {
	return &Record{ID: id, ExpirationTime: expiresAt, Data: data}
}

// Expired reports whether the record has an expiration at or before now.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpirationTime != nil && !r.ExpirationTime.After(now)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() Record {
	out := Record{ID: r.ID, Data: cloneMap(r.Data)}
	if r.ExpirationTime != nil {
		t := *r.ExpirationTime
		out.ExpirationTime = &t
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]string:
		return maps.Clone(tv)
	case []string:
		return append([]string(nil), tv...)
	default:
		return v
	}
}

// Session is the caller-visible view of a loaded record.
type Session struct {
	record Record
}

// NewSession builds a session view from r. The view owns a copy of r.
func NewSession(r Record) *Session {
	return &Session{record: r.Clone()}
}

// ID returns the session identifier.
func (s *Session) ID() ID {
	return s.record.ID
}

// ExpirationTime returns the expiry and whether one is set.
func (s *Session) ExpirationTime() (time.Time, bool) {
	if s.record.ExpirationTime == nil {
		return time.Time{}, false
	}
	return *s.record.ExpirationTime, true
}

// Get returns the payload value stored under key.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.record.Data[key]
	return v, ok
}

// Len returns the number of top-level payload entries.
func (s *Session) Len() int {
	return len(s.record.Data)
}

// Data returns a copy of the payload.
func (s *Session) Data() map[string]any {
	return cloneMap(s.record.Data)
}

// Record returns a copy of the underlying record, suitable for a later Save.
func (s *Session) Record() Record {
	return s.record.Clone()
}
