// Package testutil contains helpers shared by the session store tests: a
// fluent record builder and a conformance suite that every session.Store
// implementation runs. Not intended for production usage.
package testutil
