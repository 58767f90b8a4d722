// Command chack-tools inspects and exercises the research toolset from the
// terminal: list the tools a profile yields, run a search engine directly,
// or run one of the bundled sub-agents.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
