package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloxgo/cloxgo/lox"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Compile and execute a script file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFile(args[0])
	},
}

func runFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cloxgo: can't read %s: %s\n", path, err)
		exitCode = exitIOError
		return err
	}

	vm := lox.NewVM(loadConfig(), os.Stdout, os.Stderr)
	switch vm.Interpret(string(source)) {
	case lox.InterpretCompileError:
		exitCode = exitCompileError
		return fmt.Errorf("compile error")
	case lox.InterpretRuntimeError:
		exitCode = exitRuntimeError
		return fmt.Errorf("runtime error")
	default:
		exitCode = exitOK
		return nil
	}
}
