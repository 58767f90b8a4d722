package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

func namedTool(name string) *FuncTool {
	return NewFuncTool(&ToolMetadata{Name: name},
		func(_ context.Context, _ map[string]any) (string, error) { return name, nil })
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewInMemoryToolRegistry()
	require.NoError(t, registry.Register(namedTool("alpha")))

	tool, err := registry.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", tool.Metadata().Name)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewInMemoryToolRegistry()
	require.NoError(t, registry.Register(namedTool("alpha")))

	err := registry.Register(namedTool("alpha"))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
}

func TestRegistryGetMissing(t *testing.T) {
	registry := NewInMemoryToolRegistry()
	_, err := registry.Get("nope")
	require.Error(t, err)
	assert.Equal(t, errors.ResourceNotFound, errors.CodeOf(err))
}

func TestRegistryListPreservesOrder(t *testing.T) {
	registry := NewInMemoryToolRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, registry.Register(namedTool(name)))
	}

	var names []string
	for _, tool := range registry.List() {
		names = append(names, tool.Metadata().Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestRegistryMatch(t *testing.T) {
	registry := NewInMemoryToolRegistry()
	require.NoError(t, registry.Register(namedTool("alpha")))
	require.NoError(t, registry.Register(namedTool("beta")))

	matched := registry.Match("beta")
	require.Len(t, matched, 1)
	assert.Equal(t, "beta", matched[0].Metadata().Name)
}
