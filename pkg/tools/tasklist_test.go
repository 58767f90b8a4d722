package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskListRejectsMutationBeforeInit(t *testing.T) {
	store := NewTaskListStore()
	store.CreateSession("s1", "Research")

	out := store.Apply("s1", "Run 1", ApplyRequest{Action: "add", Text: "read paper"})
	assert.Equal(t, "ERROR: Task list not initialized for this run. First call must be action=init.", out)
}

func TestTaskListInitAndRender(t *testing.T) {
	store := NewTaskListStore()
	store.CreateSession("s1", "Research")

	out := store.Apply("s1", "Run 1", ApplyRequest{Action: "init", TasksText: "find sources\n\nread sources\nwrite summary"})
	assert.Equal(t, "SUCCESS: initialized 3 tasks for Run 1", out)

	rendered := store.Render("s1")
	assert.Contains(t, rendered, "Tasks: Research")
	assert.Contains(t, rendered, "- [ ] 1. find sources")
	assert.Contains(t, rendered, "- [ ] 3. write summary")
}

func TestTaskListLifecycle(t *testing.T) {
	store := NewTaskListStore()
	store.CreateSession("s1", "")
	store.Apply("s1", "Run 1", ApplyRequest{Action: "init", TasksText: "a\nb"})

	assert.Equal(t, "SUCCESS: added task 3", store.Apply("s1", "Run 1", ApplyRequest{Action: "add", Text: "c"}))
	assert.Equal(t, "SUCCESS: updated task 1", store.Apply("s1", "Run 1", ApplyRequest{Action: "update", TaskID: 1, Status: "doing"}))
	assert.Equal(t, "SUCCESS: completed task 2", store.Apply("s1", "Run 1", ApplyRequest{Action: "complete", TaskID: 2, Notes: "done early"}))
	assert.Equal(t, "SUCCESS: deleted task 3", store.Apply("s1", "Run 1", ApplyRequest{Action: "delete", TaskID: 3}))

	rendered := store.Render("s1")
	assert.Contains(t, rendered, "- [~] 1. a")
	assert.Contains(t, rendered, "- [x] 2. b")
	assert.Contains(t, rendered, "note: done early")
	assert.NotContains(t, rendered, "3. c")
}

func TestTaskListUnknownTaskAndAction(t *testing.T) {
	store := NewTaskListStore()
	store.Apply("s1", "Run 1", ApplyRequest{Action: "init", TasksText: "a"})

	assert.Equal(t, "ERROR: task_id 9 not found", store.Apply("s1", "Run 1", ApplyRequest{Action: "complete", TaskID: 9}))
	assert.Equal(t, "ERROR: task_id is required for action=update", store.Apply("s1", "Run 1", ApplyRequest{Action: "update"}))
	assert.Contains(t, store.Apply("s1", "Run 1", ApplyRequest{Action: "bogus"}), "ERROR: unsupported action")
}

func TestTaskListReplaceAndClear(t *testing.T) {
	store := NewTaskListStore()
	store.Apply("s1", "Run 1", ApplyRequest{Action: "init", TasksText: "a\nb"})

	out := store.Apply("s1", "Run 1", ApplyRequest{Action: "replace", TasksText: "x"})
	assert.Equal(t, "SUCCESS: replaced tasks for Run 1 with 1 items", out)
	assert.Contains(t, store.Render("s1"), "- [ ] 1. x")

	assert.Equal(t, "SUCCESS: cleared tasks for Run 1", store.Apply("s1", "Run 1", ApplyRequest{Action: "clear"}))
	assert.Contains(t, store.Render("s1"), "- (no tasks)")
}

func TestTaskListListenerNotified(t *testing.T) {
	store := NewTaskListStore()
	store.CreateSession("s1", "Research")

	var updates []string
	store.RegisterListener("s1", func(rendered string) {
		updates = append(updates, rendered)
	})

	store.Apply("s1", "Run 1", ApplyRequest{Action: "init", TasksText: "a"})
	store.Apply("s1", "Run 1", ApplyRequest{Action: "complete", TaskID: 1})

	require.Len(t, updates, 2)
	assert.Contains(t, updates[1], "- [x] 1. a")
}

func TestTaskListMultipleRunsRenderInOrder(t *testing.T) {
	store := NewTaskListStore()
	store.Apply("s1", "Run 1", ApplyRequest{Action: "init", TasksText: "a"})
	store.Apply("s1", "Run 2", ApplyRequest{Action: "init", TasksText: "b"})

	rendered := store.Render("s1")
	assert.Less(t, strings.Index(rendered, "Run 1:"), strings.Index(rendered, "Run 2:"))
	assert.Contains(t, rendered, "- [ ] 1. b")
}

func TestTaskContextRoundTrip(t *testing.T) {
	ctx := WithTaskContext(context.Background(), "s1", "")
	sessionID, runLabel := TaskContextFrom(ctx)
	assert.Equal(t, "s1", sessionID)
	assert.Equal(t, "Run 1", runLabel)

	sessionID, runLabel = TaskContextFrom(context.Background())
	assert.Equal(t, "", sessionID)
	assert.Equal(t, "Run 1", runLabel)
}

func TestTaskListFuncToolUsesContextSession(t *testing.T) {
	store := NewTaskListStore()
	tool := NewTaskListFuncTool(store)

	result, err := tool.Execute(context.Background(), map[string]any{"action": "list"})
	require.NoError(t, err)
	assert.Equal(t, "ERROR: no active session for task list", result.Text())

	ctx := WithTaskContext(context.Background(), "s1", "Run 1")
	result, err = tool.Execute(ctx, map[string]any{"action": "init", "tasks_text": "a\nb"})
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS: initialized 2 tasks for Run 1", result.Text())
}
