package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

func TestHistoryTrimsToNewest(t *testing.T) {
	history := NewHistory(2)
	history.Append(Message{Role: "user", Content: "one"})
	history.Append(Message{Role: "assistant", Content: "two"})
	history.Append(Message{Role: "user", Content: "three"})

	messages := history.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "two", messages[0].Content)
	assert.Equal(t, "three", messages[1].Content)
}

func TestHistoryUnbounded(t *testing.T) {
	history := NewHistory(0)
	for i := 0; i < 100; i++ {
		history.Append(Message{Role: "user", Content: "m"})
	}
	assert.Equal(t, 100, history.Len())
}

func TestNewSessionIDUnique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
	assert.NotEmpty(t, NewSessionID())
}

func TestManagerAppendFlushLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	id := NewSessionID()
	require.NoError(t, manager.Append(id, Message{Role: "user", Content: "what is Go?"}))
	require.NoError(t, manager.Append(id, Message{Role: "assistant", Content: "a language"}))
	require.NoError(t, manager.SetSummary(id, "talked about Go"))
	require.NoError(t, manager.Flush(id))

	sessionDir := filepath.Join(dir, id)
	summary, err := os.ReadFile(filepath.Join(sessionDir, "summary.txt"))
	require.NoError(t, err)
	assert.Equal(t, "talked about Go", string(summary))
	_, err = os.Stat(filepath.Join(sessionDir, "history.json"))
	require.NoError(t, err)

	restored, err := NewManager(dir)
	require.NoError(t, err)
	require.NoError(t, restored.Load(id))

	window := restored.Window(id)
	require.Len(t, window, 2)
	assert.Equal(t, "what is Go?", window[0].Content)
	assert.Equal(t, "talked about Go", restored.Summary(id))
}

func TestManagerAppendEmptySessionID(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	err = manager.Append("", Message{Role: "user", Content: "x"})
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
}

func TestManagerRejectsPathEscapingSessionID(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(filepath.Join(dir, "sessions"))
	require.NoError(t, err)

	for _, id := range []string{"../outside", "a/b", `a\b`, "a..b"} {
		err = manager.Append(id, Message{Role: "user", Content: "x"})
		assert.Equal(t, errors.InvalidInput, errors.CodeOf(err), id)

		err = manager.Load(id)
		assert.Equal(t, errors.InvalidInput, errors.CodeOf(err), id)

		err = manager.Flush(id)
		assert.Equal(t, errors.InvalidInput, errors.CodeOf(err), id)
	}

	// Nothing may have been written outside the session root.
	_, err = os.Stat(filepath.Join(dir, "outside"))
	assert.True(t, os.IsNotExist(err))
}

func TestManagerAutoFlushAtInterval(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir, WithFlushEvery(2))
	require.NoError(t, err)

	id := "auto-flush"
	require.NoError(t, manager.Append(id, Message{Role: "user", Content: "one"}))
	_, statErr := os.Stat(filepath.Join(dir, id, "history.json"))
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, manager.Append(id, Message{Role: "assistant", Content: "two"}))
	_, statErr = os.Stat(filepath.Join(dir, id, "history.json"))
	assert.NoError(t, statErr)
}

func TestManagerWindowLimit(t *testing.T) {
	manager, err := NewManager(t.TempDir(), WithWindow(3))
	require.NoError(t, err)

	id := "windowed"
	for _, content := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, manager.Append(id, Message{Role: "user", Content: content}))
	}

	window := manager.Window(id)
	require.Len(t, window, 3)
	assert.Equal(t, "c", window[0].Content)
	assert.Equal(t, "e", window[2].Content)
}

func TestManagerFlushUnknownSession(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	err = manager.Flush("missing")
	assert.Equal(t, errors.ResourceNotFound, errors.CodeOf(err))
}

func TestManagerLoadMissingSession(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	err = manager.Load("missing")
	assert.Equal(t, errors.ResourceNotFound, errors.CodeOf(err))
}

func TestManagerSessions(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.Append("s1", Message{Role: "user", Content: "x"}))
	require.NoError(t, manager.Append("s2", Message{Role: "user", Content: "y"}))

	assert.ElementsMatch(t, []string{"s1", "s2"}, manager.Sessions())
}
