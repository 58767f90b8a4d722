package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

func echoTool() *FuncTool {
	return NewFuncTool(&ToolMetadata{
		Name:        "echo",
		Description: "Echoes its input.",
		InputSchema: map[string]string{"text": "string", "repeat": "int"},
		Required:    []string{"text"},
	}, func(_ context.Context, params map[string]any) (string, error) {
		return StringParam(params, "text", ""), nil
	})
}

func TestFuncToolExecute(t *testing.T) {
	tool := echoTool()

	result, err := tool.Execute(context.Background(), map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Text())
}

func TestFuncToolMissingRequiredParam(t *testing.T) {
	tool := echoTool()

	_, err := tool.Execute(context.Background(), map[string]any{"repeat": 2})
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
}

func TestFuncToolCanHandle(t *testing.T) {
	tool := echoTool()
	assert.True(t, tool.CanHandle(context.Background(), "echo"))
	assert.False(t, tool.CanHandle(context.Background(), "other"))
}

func TestIntParamCoercesFloat64(t *testing.T) {
	params := map[string]any{"n": float64(7)}
	assert.Equal(t, 7, IntParam(params, "n", 0))
	assert.Equal(t, 3, IntParam(params, "missing", 3))
	assert.Equal(t, 3, IntParam(map[string]any{"n": "seven"}, "n", 3))
}

func TestStringParam(t *testing.T) {
	params := map[string]any{"s": "value", "n": 5}
	assert.Equal(t, "value", StringParam(params, "s", "fallback"))
	assert.Equal(t, "fallback", StringParam(params, "n", "fallback"))
	assert.Equal(t, "fallback", StringParam(params, "missing", "fallback"))
}

func TestBoolParam(t *testing.T) {
	params := map[string]any{"b": true}
	assert.True(t, BoolParam(params, "b", false))
	assert.True(t, BoolParam(params, "missing", true))
}
