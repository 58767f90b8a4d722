package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

// Message is one conversation entry.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// History is a bounded message window: appending past the limit drops the
// oldest entries.
type History struct {
	limit    int
	messages []Message
}

// NewHistory creates a window keeping the newest limit messages; limit <= 0
// means unbounded.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Append adds a message, trimming the window to the limit.
func (h *History) Append(msg Message) {
	h.messages = append(h.messages, msg)
	if h.limit > 0 && len(h.messages) > h.limit {
		h.messages = h.messages[len(h.messages)-h.limit:]
	}
}

// Messages returns a copy of the current window, oldest first.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages currently held.
func (h *History) Len() int { return len(h.messages) }

const (
	summaryFileName = "summary.txt"
	historyFileName = "history.json"
)

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

type sessionState struct {
	history *History
	summary string
	pending int // appends since last flush
}

// Manager keeps per-session histories and persists each session to
// <dir>/<session-id>/ as a rolling summary.txt plus a history.json
// snapshot. Files are rewritten atomically (temp file + rename).
type Manager struct {
	mu         sync.Mutex
	dir        string
	window     int
	flushEvery int
	sessions   map[string]*sessionState
	logger     *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithWindow bounds each session's in-memory history to the newest n
// messages (default 50).
func WithWindow(n int) ManagerOption {
	return func(m *Manager) { m.window = n }
}

// WithFlushEvery flushes a session to disk after every n appends
// (default 10). Flush() forces it at any time.
func WithFlushEvery(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.flushEvery = n
		}
	}
}

// WithManagerLogger sets the manager's logger.
func WithManagerLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a Manager rooted at dir, creating it if needed.
func NewManager(dir string, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		dir:        dir,
		window:     50,
		flushEvery: 10,
		sessions:   make(map[string]*sessionState),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to create session directory"),
			errors.Fields{"dir": dir},
		)
	}
	return m, nil
}

// validateSessionID rejects ids that are empty or could escape the session
// root when joined into a path.
func validateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New(errors.InvalidInput, "session id cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || strings.Contains(sessionID, "..") {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "session id cannot contain path separators"),
			errors.Fields{"session_id": sessionID},
		)
	}
	return nil
}

func (m *Manager) stateLocked(sessionID string) *sessionState {
	state, ok := m.sessions[sessionID]
	if !ok {
		state = &sessionState{history: NewHistory(m.window)}
		m.sessions[sessionID] = state
	}
	return state
}

// Append records a message for the session, flushing to disk when the
// flush interval is reached.
func (m *Manager) Append(sessionID string, msg Message) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(sessionID)
	state.history.Append(msg)
	state.pending++
	if state.pending >= m.flushEvery {
		return m.flushLocked(sessionID, state)
	}
	return nil
}

// SetSummary replaces the session's rolling summary and persists it.
func (m *Manager) SetSummary(sessionID, summary string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(sessionID)
	state.summary = summary
	return m.flushLocked(sessionID, state)
}

// Summary returns the session's current rolling summary.
func (m *Manager) Summary(sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.sessions[sessionID]; ok {
		return state.summary
	}
	return ""
}

// Window returns the session's current message window, oldest first.
func (m *Manager) Window(sessionID string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.sessions[sessionID]; ok {
		return state.history.Messages()
	}
	return nil
}

// Flush forces the session's state to disk.
func (m *Manager) Flush(sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[sessionID]
	if !ok {
		return errors.WithFields(
			errors.New(errors.ResourceNotFound, "unknown session"),
			errors.Fields{"session_id": sessionID},
		)
	}
	return m.flushLocked(sessionID, state)
}

func (m *Manager) flushLocked(sessionID string, state *sessionState) error {
	sessionDir := filepath.Join(m.dir, sessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to create session directory"),
			errors.Fields{"dir": sessionDir},
		)
	}

	snapshot, err := json.MarshalIndent(state.history.Messages(), "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "failed to marshal history snapshot")
	}
	if err := writeFileAtomic(filepath.Join(sessionDir, historyFileName), snapshot); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(sessionDir, summaryFileName), []byte(state.summary)); err != nil {
		return err
	}

	state.pending = 0
	m.logger.Debug("session flushed",
		zap.String("session_id", sessionID),
		zap.Int("messages", state.history.Len()))
	return nil
}

// Load restores a session's history and summary from disk into memory,
// replacing any in-memory state for that id.
func (m *Manager) Load(sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	sessionDir := filepath.Join(m.dir, sessionID)

	snapshot, err := os.ReadFile(filepath.Join(sessionDir, historyFileName))
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.ResourceNotFound, "no persisted history for session"),
			errors.Fields{"session_id": sessionID},
		)
	}
	var messages []Message
	if err := json.Unmarshal(snapshot, &messages); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.InvalidResponse, "corrupt history snapshot"),
			errors.Fields{"session_id": sessionID},
		)
	}

	summary, err := os.ReadFile(filepath.Join(sessionDir, summaryFileName))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.Unknown, "failed to read session summary")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	state := &sessionState{history: NewHistory(m.window), summary: string(summary)}
	for _, msg := range messages {
		state.history.Append(msg)
	}
	m.sessions[sessionID] = state
	return nil
}

// Sessions lists the session ids currently held in memory.
func (m *Manager) Sessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// writeFileAtomic writes data next to path and renames it into place, so
// readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, errors.Unknown, "failed to write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.Unknown, "failed to close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to replace file"),
			errors.Fields{"path": path},
		)
	}
	return nil
}
