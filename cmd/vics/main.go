// Command vics is an autonomous coding agent. It gives a language model a
// sandboxed workspace and a small set of file, search and shell tools, then
// loops until the model answers without asking for more tool calls.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	err := NewRootCommand(NewApp()).Run(ctx, os.Args)
	stop()
	if errors.Is(err, errRunAborted) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
