package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

// runStoreSuite exercises the Store contract. countsExpired is false for
// backends that expire keys on their own and so report 0 from CleanExpired.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store, countsExpired bool) {
	t.Run("StoreAndRetrieve", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Store("summary", "researched golang"))
		value, err := store.Retrieve("summary")
		require.NoError(t, err)
		assert.Equal(t, "researched golang", value)
	})

	t.Run("RetrieveMissing", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		_, err := store.Retrieve("absent")
		assert.Equal(t, errors.ResourceNotFound, errors.CodeOf(err))
	})

	t.Run("Overwrite", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Store("k", "v1"))
		require.NoError(t, store.Store("k", "v2"))
		value, err := store.Retrieve("k")
		require.NoError(t, err)
		assert.Equal(t, "v2", value)

		keys, err := store.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"k"}, keys)
	})

	t.Run("ListAndClear", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Store("a", 1))
		require.NoError(t, store.Store("b", 2))

		keys, err := store.List()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, keys)

		require.NoError(t, store.Clear())
		keys, err = store.List()
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Store("ephemeral", "x", WithTTL(20*time.Millisecond)))
		require.NoError(t, store.Store("durable", "y"))

		_, err := store.Retrieve("ephemeral")
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		removed, err := store.CleanExpired(context.Background())
		require.NoError(t, err)
		if countsExpired {
			assert.EqualValues(t, 1, removed)
		}

		_, err = store.Retrieve("ephemeral")
		assert.Equal(t, errors.ResourceNotFound, errors.CodeOf(err))
		_, err = store.Retrieve("durable")
		assert.NoError(t, err)
	})
}

func TestInMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return NewInMemoryStore()
	}, true)
}

func TestInMemoryStoreListInsertionOrder(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Store("z", 1))
	require.NoError(t, store.Store("a", 2))
	require.NoError(t, store.Store("m", 3))

	keys, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, keys)
}

func TestInMemoryStoreRetrieveRespectsTTLBeforeClean(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Store("k", "v", WithTTL(10*time.Millisecond)))
	time.Sleep(30 * time.Millisecond)

	// Expired but not yet cleaned: reads must already miss.
	_, err := store.Retrieve("k")
	assert.Equal(t, errors.ResourceNotFound, errors.CodeOf(err))
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		store, err := NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	}, true)
}

// TestRedisStore runs the shared suite against a live Redis. It is gated on
// CHACK_REDIS_TEST_ADDR so CI without Redis skips it:
//
//	CHACK_REDIS_TEST_ADDR=localhost:6379 go test ./pkg/session/...
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("CHACK_REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("CHACK_REDIS_TEST_ADDR not set")
	}

	runStoreSuite(t, func(t *testing.T) Store {
		// A fresh prefix per subtest keeps runs isolated on a shared DB.
		store, err := NewRedisStore(addr, "", 0, "chack:test:"+uuid.NewString())
		require.NoError(t, err)
		require.NoError(t, store.Clear())
		return store
	}, false)
}

func TestNewRedisStoreFromURLInvalid(t *testing.T) {
	_, err := NewRedisStoreFromURL("://not-a-url", "")
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
}

func TestSQLiteStoreRoundTripsJSONValues(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Store("state", map[string]any{"turns": float64(3), "done": true}))

	value, err := store.Retrieve("state")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"turns": float64(3), "done": true}, value)
}
