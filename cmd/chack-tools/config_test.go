package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chack-ai/chack-tools/pkg/errors"
	"github.com/chack-ai/chack-tools/pkg/session"
)

func TestOpenSessionStoreUnconfigured(t *testing.T) {
	store, err := openSessionStore(&fileConfig{})
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestOpenSessionStoreMemory(t *testing.T) {
	store, err := openSessionStore(&fileConfig{SessionStore: "memory"})
	require.NoError(t, err)
	defer store.Close()
	_, ok := store.(*session.InMemoryStore)
	assert.True(t, ok)
}

func TestOpenSessionStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := openSessionStore(&fileConfig{SessionStore: "sqlite:" + path})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Store("s1", "hello"))
	value, err := store.Retrieve("s1")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)
}

func TestOpenSessionStoreUnknown(t *testing.T) {
	_, err := openSessionStore(&fileConfig{SessionStore: "etcd://somewhere"})
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
}

func TestLoadConfigReadsSessionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session_store: redis://localhost:6379/0\n"), 0o644))

	_, fc, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", fc.SessionStore)
}
