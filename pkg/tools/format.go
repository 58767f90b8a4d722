// Package tools implements the local tools of the research toolset: shell
// execution, PDF text extraction, session task lists, usage accounting and
// the formatting helpers shared by tool outputs.
package tools

import (
	"fmt"
	"strings"
)

var redactedMarkers = []string{"api_key", "token", "secret", "password"}

// Truncate caps text at limit characters, appending a hint that tells the
// model how to narrow the output on a rerun.
func Truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + fmt.Sprintf("\n[the output was truncated, exceeded limit of %d chars. You probably want to rerun the command with a grep/jq or similar pipe to extract the data you are looking for]", limit)
}

// TruncateClean caps text at limit characters with a plain truncation
// marker, used for document extracts where a rerun hint makes no sense.
func TruncateClean(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return strings.TrimRight(text[:limit], " \n") + "\n\n[truncated]"
}

// RedactSensitive replaces text containing credential-looking markers with a
// placeholder and shortens everything else to a single log-friendly line.
func RedactSensitive(text string) string {
	if text == "" {
		return text
	}
	lowered := strings.ToLower(text)
	for _, marker := range redactedMarkers {
		if strings.Contains(lowered, marker) {
			return "[redacted]"
		}
	}
	clean := strings.Join(strings.Fields(text), " ")
	if len(clean) > 300 {
		clean = strings.TrimRight(clean[:297], " ") + "..."
	}
	return clean
}

// ToolStep is one recorded tool invocation of an agent run.
type ToolStep struct {
	Tool  string
	Input string
}

// FormatToolSteps renders a run's tool invocations as a bullet list, with a
// turns-remaining notice every notifyEvery steps.
func FormatToolSteps(steps []ToolStep, maxChars, maxTurns, notifyEvery int) string {
	if len(steps) == 0 {
		return ""
	}
	if maxChars <= 0 {
		maxChars = 320
	}
	var lines []string
	for idx, step := range steps {
		name := step.Tool
		if name == "" {
			name = "tool"
		}
		input := Truncate(RedactSensitive(step.Input), maxChars)
		lines = append(lines, fmt.Sprintf("- %s: %s", name, input))
		n := idx + 1
		if notifyEvery > 0 && maxTurns > 0 && n%notifyEvery == 0 {
			remaining := maxTurns - n
			if remaining < 0 {
				remaining = 0
			}
			lines = append(lines, fmt.Sprintf("- turns-remaining: %d (used %d/%d)", remaining, n, maxTurns))
		}
	}
	return strings.Join(lines, "\n")
}
