// Command cloxgo is the cloxgo language's CLI: run a script, drop into a
// REPL, or compile a script to a serialized artifact without running it.
package main

import "os"

func main() {
	exitCode = 0
	if err := rootCmd.Execute(); err != nil {
		if exitCode == 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}
