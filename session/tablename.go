package session

import (
	"fmt"

	"github.com/creastat/sessionstore"
)

// DefaultTableName is the table used by relational stores unless overridden.
const DefaultTableName = "tower_sessions"

// ValidateTableName rejects names that are unsafe to embed in generated SQL.
// Only ASCII letters, digits, hyphens and underscores are accepted.
func ValidateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: table name must not be empty", sessionstore.ErrInvalidTableName)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return fmt.Errorf("%w %q: table names must be alphanumeric and may contain hyphens or underscores",
				sessionstore.ErrInvalidTableName, name)
		}
	}
	return nil
}
