package drivers

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/creastat/sessionstore"
	"github.com/creastat/sessionstore/internal/testutil"
	"github.com/creastat/sessionstore/session"
)

// Interface compliance (compile-time assertions)
var (
	_ session.Store          = (*SQLiteStore)(nil)
	_ session.Migrator       = (*SQLiteStore)(nil)
	_ session.ExpiredDeleter = (*SQLiteStore)(nil)
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newMigratedSQLiteStore(t *testing.T, opts ...StoreOption) (*SQLiteStore, *sql.DB) {
	t.Helper()
	db := openSQLite(t)
	store, err := NewSQLiteStore(db, opts...)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	return store, db
}

func TestSQLiteStore_Contract(t *testing.T) {
	testutil.RunStoreSuite(t, func(t *testing.T) session.Store {
		store, _ := newMigratedSQLiteStore(t)
		return store
	})
}

func TestSQLiteStore_DefaultTableName(t *testing.T) {
	store, db := newMigratedSQLiteStore(t)
	assert.Equal(t, "tower_sessions", store.TableName())

	var name string
	require.NoError(t, db.QueryRow(`select name from sqlite_master where type = 'table'`).Scan(&name))
	assert.Equal(t, "tower_sessions", name)
}

func TestSQLiteStore_MigrateIsIdempotent(t *testing.T) {
	store, _ := newMigratedSQLiteStore(t)
	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSQLiteStore_CustomTableName(t *testing.T) {
	store, db := newMigratedSQLiteStore(t, WithTableName("app-sessions"))
	ctx := context.Background()
	assert.Equal(t, "app-sessions", store.TableName())

	rec := testutil.NewRecordBuilder().Data("user", 1.0).Build()
	require.NoError(t, store.Save(ctx, rec))

	var n int
	require.NoError(t, db.QueryRow(`select count(*) from "app-sessions"`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_InvalidTableNameIssuesNoQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, name := range []string{"", "my sessions", "sessions;", "sessions'", `sessions"`} {
		store, err := NewSQLiteStore(db, WithTableName(name))
		assert.ErrorIs(t, err, sessionstore.ErrInvalidTableName, "table %q", name)
		assert.Nil(t, store)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_RequiresDB(t *testing.T) {
	_, err := NewSQLiteStore(nil)
	assert.ErrorIs(t, err, sessionstore.ErrInvalidConfig)
}

func TestSQLiteStore_ExpiredRowsStayUntilDeleted(t *testing.T) {
	store, db := newMigratedSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Save(ctx, testutil.NewRecordBuilder().ExpiresIn(-time.Minute).Build()))
	}
	live := testutil.NewRecordBuilder().ExpiresIn(time.Hour).Build()
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, testutil.NewRecordBuilder().Build()))

	var n int
	require.NoError(t, db.QueryRow(`select count(*) from "tower_sessions"`).Scan(&n))
	assert.Equal(t, 4, n)

	deleted, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	require.NoError(t, db.QueryRow(`select count(*) from "tower_sessions"`).Scan(&n))
	assert.Equal(t, 2, n)

	got, err := store.Load(ctx, live.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSQLiteStore_StoresUnixMicros(t *testing.T) {
	store, db := newMigratedSQLiteStore(t)
	ctx := context.Background()

	exp := time.Date(2100, 1, 2, 3, 4, 5, 123456789, time.UTC)
	rec := testutil.NewRecordBuilder().ExpiresAt(exp).Build()
	require.NoError(t, store.Save(ctx, rec))

	var stored int64
	require.NoError(t, db.QueryRow(`select expiration_time from "tower_sessions" where id = ?`, rec.ID.String()).Scan(&stored))
	assert.Equal(t, exp.UnixMicro(), stored)
}

func TestSQLiteStore_FarFutureExpiration(t *testing.T) {
	years := []int{2262, 2300, 3000, 9999}
	for _, year := range years {
		t.Run(fmt.Sprint(year), func(t *testing.T) {
			store, _ := newMigratedSQLiteStore(t)
			ctx := context.Background()

			exp := time.Date(year, 6, 1, 12, 0, 0, 0, time.UTC)
			rec := testutil.NewRecordBuilder().Data("user", 1.0).ExpiresAt(exp).Build()
			require.NoError(t, store.Save(ctx, rec))

			got, err := store.Load(ctx, rec.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			gotExp, ok := got.ExpirationTime()
			require.True(t, ok)
			assert.True(t, gotExp.Equal(exp), "got %s", gotExp)

			deleted, err := store.DeleteExpired(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(0), deleted)

			got, err = store.Load(ctx, rec.ID)
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestSQLiteStore_CorruptedData(t *testing.T) {
	store, db := newMigratedSQLiteStore(t)
	ctx := context.Background()

	rec := testutil.NewRecordBuilder().Data("user", 1.0).Build()
	require.NoError(t, store.Save(ctx, rec))
	_, err := db.Exec(`update "tower_sessions" set data = 'not json' where id = ?`, rec.ID.String())
	require.NoError(t, err)

	got, err := store.Load(ctx, rec.ID)
	assert.ErrorIs(t, err, sessionstore.ErrSerialization)
	assert.Nil(t, got)
}

func TestSQLiteStore_UnserializableData(t *testing.T) {
	store, db := newMigratedSQLiteStore(t)
	ctx := context.Background()

	rec := testutil.NewRecordBuilder().Data("fn", func() {}).Build()
	err := store.Save(ctx, rec)
	assert.ErrorIs(t, err, sessionstore.ErrSerialization)

	var n int
	require.NoError(t, db.QueryRow(`select count(*) from "tower_sessions"`).Scan(&n))
	assert.Zero(t, n)
}

func TestSQLiteStore_BackendError(t *testing.T) {
	db := openSQLite(t)
	store, err := NewSQLiteStore(db)
	require.NoError(t, err)

	// no Migrate: the table does not exist
	_, err = store.Load(context.Background(), session.NewID())
	assert.ErrorIs(t, err, sessionstore.ErrBackend)
}
