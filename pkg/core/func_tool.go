package core

import (
	"context"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

// ToolFunc is the signature wrapped by FuncTool. Tools return a plain text
// block for the model; transport-level failures go to the error return.
type ToolFunc func(ctx context.Context, params map[string]any) (string, error)

// FuncTool adapts a plain function into a Tool.
type FuncTool struct {
	meta *ToolMetadata
	fn   ToolFunc
}

var _ Tool = (*FuncTool)(nil)

// NewFuncTool wraps fn with the given metadata.
func NewFuncTool(meta *ToolMetadata, fn ToolFunc) *FuncTool {
	return &FuncTool{meta: meta, fn: fn}
}

func (t *FuncTool) Metadata() *ToolMetadata { return t.meta }

func (t *FuncTool) CanHandle(_ context.Context, intent string) bool {
	return intent == t.meta.Name
}

// Validate checks that all required parameters are present and non-nil.
func (t *FuncTool) Validate(params map[string]any) error {
	for _, name := range t.meta.Required {
		value, ok := params[name]
		if !ok || value == nil {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "missing required parameter"),
				errors.Fields{"tool": t.meta.Name, "param": name},
			)
		}
	}
	return nil
}

func (t *FuncTool) Execute(ctx context.Context, params map[string]any) (ToolResult, error) {
	if err := t.Validate(params); err != nil {
		return ToolResult{}, err
	}
	out, err := t.fn(ctx, params)
	if err != nil {
		return ToolResult{}, err
	}
	return ToolResult{Data: out}, nil
}

// Param helpers for ToolFunc implementations. Models routinely send numbers
// as float64 and booleans as strings, so coercion is permissive.

// StringParam returns params[name] as a string, or fallback when absent.
func StringParam(params map[string]any, name, fallback string) string {
	if v, ok := params[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// IntParam returns params[name] as an int, or fallback when absent or not
// numeric.
func IntParam(params map[string]any, name string, fallback int) int {
	v, ok := params[name]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return fallback
}

// BoolParam returns params[name] as a bool, or fallback.
func BoolParam(params map[string]any, name string, fallback bool) bool {
	v, ok := params[name]
	if !ok {
		return fallback
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}
