package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/cloxgo/cloxgo/lox"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive cloxgo session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL()
	},
}

// runREPL reads one line at a time and interprets each independently
// against a single persistent VM, so a `var` or `fun` declared on one
// line is visible to the next. It never returns a non-nil error for a
// compile or runtime error in a line — those are reported and the session
// continues, matching a conventional Lox REPL.
func runREPL() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	vm := lox.NewVM(loadConfig(), os.Stdout, os.Stderr)

	for {
		input, err := line.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(os.Stdout)
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "cloxgo: %s\n", err)
			break
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		vm.Interpret(input)
	}

	exitCode = exitOK
	return nil
}
