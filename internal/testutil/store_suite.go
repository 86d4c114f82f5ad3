package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creastat/sessionstore"
	"github.com/creastat/sessionstore/session"
)

// RunStoreSuite checks the storage contract against the store returned by
// newStore. newStore is called once per subtest and must return an empty store.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) session.Store) {
	t.Helper()

	t.Run("RoundTrip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		rec := NewRecordBuilder().
			Data("user", 1.0).
			Data("name", "alice").
			Data("nested", map[string]any{"roles": []any{"admin", "dev"}}).
			ExpiresIn(time.Hour).
			Build()
		require.NoError(t, store.Save(ctx, rec))

		got, err := store.Load(ctx, rec.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		AssertSessionMatches(t, rec, got)
	})

	t.Run("RoundTripWithoutExpiration", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		rec := NewRecordBuilder().Data("user", 1.0).Build()
		require.NoError(t, store.Save(ctx, rec))

		got, err := store.Load(ctx, rec.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		AssertSessionMatches(t, rec, got)
	})

	t.Run("Upsert", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first := NewRecordBuilder().Data("step", 1.0).Data("only_first", true).Build()
		second := NewRecordBuilder().ID(first.ID).Data("step", 2.0).ExpiresIn(time.Hour).Build()
		require.NoError(t, store.Save(ctx, first))
		require.NoError(t, store.Save(ctx, second))

		got, err := store.Load(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		AssertSessionMatches(t, second, got)
		_, ok := got.Get("only_first")
		assert.False(t, ok, "upsert must replace the payload, not merge it")
	})

	t.Run("ExpiredIsNotLoaded", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		rec := NewRecordBuilder().Data("user", 1.0).ExpiresIn(-time.Second).Build()
		require.NoError(t, store.Save(ctx, rec))

		got, err := store.Load(ctx, rec.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("MissingIsNotAnError", func(t *testing.T) {
		store := newStore(t)

		got, err := store.Load(context.Background(), session.NewID())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		rec := NewRecordBuilder().Data("user", 1.0).Build()
		require.NoError(t, store.Save(ctx, rec))

		require.NoError(t, store.Delete(ctx, rec.ID))
		require.NoError(t, store.Delete(ctx, rec.ID))
		require.NoError(t, store.Delete(ctx, session.NewID()))

		got, err := store.Load(ctx, rec.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("IsolationAcrossIDs", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		a := NewRecordBuilder().Data("owner", "a").Build()
		b := NewRecordBuilder().Data("owner", "b").Build()
		require.NoError(t, store.Save(ctx, a))
		require.NoError(t, store.Save(ctx, b))

		a2 := NewRecordBuilder().ID(a.ID).Data("owner", "a2").Build()
		require.NoError(t, store.Save(ctx, a2))
		require.NoError(t, store.Delete(ctx, a.ID))

		got, err := store.Load(ctx, b.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		AssertSessionMatches(t, b, got)
	})

	t.Run("ExpireByOverwrite", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		id := session.NewID()

		require.NoError(t, store.Save(ctx, NewRecordBuilder().ID(id).Data("user", 1.0).Build()))
		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		user, _ := got.Get("user")
		assert.Equal(t, 1.0, user)
		_, hasExpiry := got.ExpirationTime()
		assert.False(t, hasExpiry)

		require.NoError(t, store.Save(ctx, NewRecordBuilder().ID(id).Data("user", 1.0).ExpiresIn(-time.Second).Build()))
		got, err = store.Load(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("NilRecord", func(t *testing.T) {
		store := newStore(t)

		err := store.Save(context.Background(), nil)
		assert.ErrorIs(t, err, sessionstore.ErrInvalidRecord)
	})

	t.Run("Concurrency", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		ids := make([]session.ID, 5)
		for i := range ids {
			ids[i] = session.NewID()
		}

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := ids[i%len(ids)]
				rec := NewRecordBuilder().ID(id).Data("writer", fmt.Sprintf("w%d", i)).Build()
				if err := store.Save(ctx, rec); err != nil {
					t.Errorf("save: %v", err)
				}
				if _, err := store.Load(ctx, id); err != nil {
					t.Errorf("load: %v", err)
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			got, err := store.Load(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, id, got.ID())
			_, ok := got.Get("writer")
			assert.True(t, ok)
		}
	})
}

// AssertSessionMatches checks that got carries the id, expiration and payload of want.
func AssertSessionMatches(t *testing.T, want *session.Record, got *session.Session) {
	t.Helper()

	assert.Equal(t, want.ID, got.ID())
	exp, ok := got.ExpirationTime()
	if want.ExpirationTime == nil {
		assert.False(t, ok, "expected no expiration, got %v", exp)
	} else if assert.True(t, ok, "expected an expiration") {
		assert.True(t, want.ExpirationTime.Equal(exp), "expiration: want %v, got %v", *want.ExpirationTime, exp)
	}
	assert.Equal(t, want.Data, got.Data())
}
