package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chack-ai/chack-tools/pkg/core"
)

// ExecTool runs shell commands locally with a timeout and an output cap.
type ExecTool struct {
	config *core.ToolsConfig
	logger *zap.Logger
}

// NewExecTool creates an exec helper bound to the given config.
func NewExecTool(config *core.ToolsConfig, logger *zap.Logger) *ExecTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecTool{config: config, logger: logger}
}

// Run executes command through `sh -c` and returns combined stdout+stderr,
// truncated to the configured output cap.
func (e *ExecTool) Run(ctx context.Context, command string) string {
	if strings.TrimSpace(command) == "" {
		return "ERROR: command cannot be empty"
	}

	timeout := e.config.ExecTimeoutSeconds
	if timeout <= 0 {
		timeout = 120
	}
	maxChars := e.config.ExecMaxOutputChars
	if maxChars <= 0 {
		maxChars = 4000
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Env = e.childEnv()

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	e.logger.Debug("exec tool running command", zap.String("command", RedactSensitive(command)))
	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("ERROR: command timed out after %ds", timeout)
	}

	output := strings.TrimSpace(combined.String())
	if output == "" {
		output = "(no output)"
	}
	if err != nil {
		// The model reads exit status from the combined output; only a
		// start failure is worth surfacing separately.
		if _, isExit := err.(*exec.ExitError); !isExit {
			return fmt.Sprintf("ERROR: failed to run command (%v)", err)
		}
	}
	return Truncate(output, maxChars)
}

// childEnv passes the parent environment through and publishes the
// configured AWS profile list for scripts that fan out across accounts.
func (e *ExecTool) childEnv() []string {
	env := os.Environ()
	if len(e.config.AWSProfiles) > 0 {
		env = append(env, core.EnvAWSProfiles+"="+strings.Join(e.config.AWSProfiles, ","))
	}
	return env
}

// NewExecFuncTool exposes Run as a core.Tool named "exec".
func NewExecFuncTool(config *core.ToolsConfig, logger *zap.Logger) *core.FuncTool {
	helper := NewExecTool(config, logger)
	return core.NewFuncTool(
		&core.ToolMetadata{
			Name:        "exec",
			Description: "Execute a shell command locally and return combined output.",
			InputSchema: map[string]string{"command": "string"},
			Required:    []string{"command"},
		},
		func(ctx context.Context, params map[string]any) (string, error) {
			return helper.Run(ctx, core.StringParam(params, "command", "")), nil
		},
	)
}
