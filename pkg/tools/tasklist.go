package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/chack-ai/chack-tools/pkg/core"
)

// Task statuses.
const (
	TaskStatusTodo  = "todo"
	TaskStatusDoing = "doing"
	TaskStatusDone  = "done"
)

// TaskItem is a single entry in a run's task list.
type TaskItem struct {
	ID     int
	Text   string
	Status string
	Notes  string
}

// TaskRun holds one run's task list within a session.
type TaskRun struct {
	Label       string
	Initialized bool
	NextID      int
	Tasks       []*TaskItem
}

// TaskSession groups runs under a session id.
type TaskSession struct {
	SessionID string
	Title     string
	Runs      map[string]*TaskRun
	runOrder  []string
}

// TaskListener receives the rendered task list after every mutation.
type TaskListener func(rendered string)

// TaskListStore keeps per-session, per-run task lists and notifies
// listeners on change.
type TaskListStore struct {
	mu        sync.Mutex
	sessions  map[string]*TaskSession
	listeners map[string][]TaskListener
}

// NewTaskListStore creates an empty store.
func NewTaskListStore() *TaskListStore {
	return &TaskListStore{
		sessions:  make(map[string]*TaskSession),
		listeners: make(map[string][]TaskListener),
	}
}

// CreateSession registers a session with a display title.
func (s *TaskListStore) CreateSession(sessionID, title string) *TaskSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if title == "" {
		title = "Task List"
	}
	session := &TaskSession{
		SessionID: sessionID,
		Title:     title,
		Runs:      make(map[string]*TaskRun),
	}
	s.sessions[sessionID] = session
	return session
}

// RegisterListener subscribes to rendered updates for a session.
func (s *TaskListStore) RegisterListener(sessionID string, listener TaskListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[sessionID] = append(s.listeners[sessionID], listener)
}

func (s *TaskListStore) ensureRunLocked(sessionID, runLabel string) *TaskRun {
	session, ok := s.sessions[sessionID]
	if !ok {
		session = &TaskSession{
			SessionID: sessionID,
			Title:     "Task List",
			Runs:      make(map[string]*TaskRun),
		}
		s.sessions[sessionID] = session
	}
	run, ok := session.Runs[runLabel]
	if !ok {
		run = &TaskRun{Label: runLabel, NextID: 1}
		session.Runs[runLabel] = run
		session.runOrder = append(session.runOrder, runLabel)
	}
	return run
}

func (s *TaskListStore) notifyLocked(sessionID string) {
	rendered := s.renderLocked(sessionID)
	for _, listener := range s.listeners[sessionID] {
		listener(rendered)
	}
}

// ApplyRequest carries one task-list mutation or query.
type ApplyRequest struct {
	Action    string // init, list, add, update, complete, delete, clear, replace
	TaskID    int
	Text      string
	Status    string
	TasksText string // newline-separated task texts for init/replace
	Notes     string
}

func parseTaskLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Apply mutates or queries the run's task list and returns the agent-facing
// result text. Mutations before an init are rejected.
func (s *TaskListStore) Apply(sessionID, runLabel string, req ApplyRequest) string {
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if action == "" {
		return "ERROR: action is required"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	run := s.ensureRunLocked(sessionID, runLabel)

	switch action {
	case "init", "replace":
		items := parseTaskLines(req.TasksText)
		run.Tasks = nil
		run.NextID = 1
		for _, text := range items {
			run.Tasks = append(run.Tasks, &TaskItem{ID: run.NextID, Text: text, Status: TaskStatusTodo})
			run.NextID++
		}
		run.Initialized = true
		s.notifyLocked(sessionID)
		if action == "init" {
			return fmt.Sprintf("SUCCESS: initialized %d tasks for %s", len(run.Tasks), runLabel)
		}
		return fmt.Sprintf("SUCCESS: replaced tasks for %s with %d items", runLabel, len(run.Tasks))

	case "list":
		return s.renderLocked(sessionID)
	}

	if !run.Initialized {
		return "ERROR: Task list not initialized for this run. First call must be action=init."
	}

	switch action {
	case "add":
		text := strings.TrimSpace(req.Text)
		if text == "" {
			return "ERROR: text is required for action=add"
		}
		status := req.Status
		if status == "" {
			status = TaskStatusTodo
		}
		run.Tasks = append(run.Tasks, &TaskItem{ID: run.NextID, Text: text, Status: status})
		added := run.NextID
		run.NextID++
		s.notifyLocked(sessionID)
		return fmt.Sprintf("SUCCESS: added task %d", added)

	case "update", "complete", "delete":
		if req.TaskID == 0 {
			return fmt.Sprintf("ERROR: task_id is required for action=%s", action)
		}
		var task *TaskItem
		for _, t := range run.Tasks {
			if t.ID == req.TaskID {
				task = t
				break
			}
		}
		if task == nil {
			return fmt.Sprintf("ERROR: task_id %d not found", req.TaskID)
		}
		switch action {
		case "delete":
			kept := run.Tasks[:0]
			for _, t := range run.Tasks {
				if t.ID != req.TaskID {
					kept = append(kept, t)
				}
			}
			run.Tasks = kept
			s.notifyLocked(sessionID)
			return fmt.Sprintf("SUCCESS: deleted task %d", req.TaskID)
		case "complete":
			task.Status = TaskStatusDone
			if notes := strings.TrimSpace(req.Notes); notes != "" {
				task.Notes = notes
			}
			s.notifyLocked(sessionID)
			return fmt.Sprintf("SUCCESS: completed task %d", req.TaskID)
		default:
			if text := strings.TrimSpace(req.Text); text != "" {
				task.Text = text
			}
			if status := strings.TrimSpace(req.Status); status != "" {
				task.Status = strings.ToLower(status)
			}
			if notes := strings.TrimSpace(req.Notes); notes != "" {
				task.Notes = notes
			}
			s.notifyLocked(sessionID)
			return fmt.Sprintf("SUCCESS: updated task %d", req.TaskID)
		}

	case "clear":
		run.Tasks = nil
		run.NextID = 1
		run.Initialized = true
		s.notifyLocked(sessionID)
		return fmt.Sprintf("SUCCESS: cleared tasks for %s", runLabel)
	}

	return "ERROR: unsupported action. Use one of: init, list, add, update, complete, delete, clear, replace"
}

// Render returns the checklist view for a session.
func (s *TaskListStore) Render(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked(sessionID)
}

func (s *TaskListStore) renderLocked(sessionID string) string {
	session, ok := s.sessions[sessionID]
	if !ok {
		return "Task list session not found."
	}
	lines := []string{fmt.Sprintf("Tasks: %s", session.Title)}
	if len(session.Runs) == 0 {
		lines = append(lines, "- (no runs yet)")
		return strings.Join(lines, "\n")
	}
	order := session.runOrder
	if len(order) == 0 {
		for label := range session.Runs {
			order = append(order, label)
		}
		sort.Strings(order)
	}
	for _, label := range order {
		run := session.Runs[label]
		lines = append(lines, "", label+":")
		if len(run.Tasks) == 0 {
			state := "no tasks"
			if !run.Initialized {
				state = "not initialized"
			}
			lines = append(lines, fmt.Sprintf("- (%s)", state))
			continue
		}
		for _, task := range run.Tasks {
			mark := " "
			switch task.Status {
			case TaskStatusDone:
				mark = "x"
			case TaskStatusDoing:
				mark = "~"
			}
			lines = append(lines, fmt.Sprintf("- [%s] %d. %s", mark, task.ID, task.Text))
			if task.Notes != "" {
				lines = append(lines, "  note: "+task.Notes)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// --- active session propagation ---

type taskContextKey struct{}

type taskContext struct {
	sessionID string
	runLabel  string
}

// WithTaskContext marks ctx with the session and run the task-list tool
// should target.
func WithTaskContext(ctx context.Context, sessionID, runLabel string) context.Context {
	if runLabel == "" {
		runLabel = "Run 1"
	}
	return context.WithValue(ctx, taskContextKey{}, taskContext{sessionID: sessionID, runLabel: runLabel})
}

// TaskContextFrom returns the active session id and run label, defaulting
// the run label to "Run 1".
func TaskContextFrom(ctx context.Context) (sessionID, runLabel string) {
	if tc, ok := ctx.Value(taskContextKey{}).(taskContext); ok {
		return tc.sessionID, tc.runLabel
	}
	return "", "Run 1"
}

// NewTaskListFuncTool exposes the store as a core.Tool named "task_list".
// The target session comes from the request context.
func NewTaskListFuncTool(store *TaskListStore) *core.FuncTool {
	return core.NewFuncTool(
		&core.ToolMetadata{
			Name: "task_list",
			Description: "Track research tasks for the current session. " +
				"Actions: init, list, add, update, complete, delete, clear, replace.",
			InputSchema: map[string]string{
				"action":     "string",
				"task_id":    "int",
				"text":       "string",
				"status":     "string",
				"tasks_text": "string",
				"notes":      "string",
			},
			Required: []string{"action"},
		},
		func(ctx context.Context, params map[string]any) (string, error) {
			sessionID, runLabel := TaskContextFrom(ctx)
			if sessionID == "" {
				return "ERROR: no active session for task list", nil
			}
			return store.Apply(sessionID, runLabel, ApplyRequest{
				Action:    core.StringParam(params, "action", ""),
				TaskID:    core.IntParam(params, "task_id", 0),
				Text:      core.StringParam(params, "text", ""),
				Status:    core.StringParam(params, "status", ""),
				TasksText: core.StringParam(params, "tasks_text", ""),
				Notes:     core.StringParam(params, "notes", ""),
			}), nil
		},
	)
}
