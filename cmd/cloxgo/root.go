package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cloxgo/cloxgo/lox"
)

const (
	exitOK            = 0
	exitCompileError  = 65
	exitRuntimeError  = 70
	exitIOError       = 74
)

// exitCode is set by whichever RunE actually executed; main reads it after
// Execute returns since cobra itself only distinguishes "errored" from
// "didn't", not which of our three failure exit codes applies.
var exitCode int

var (
	configPath    string
	traceExecFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "cloxgo [script]",
	Short: "cloxgo is a bytecode-compiled interpreter for the Lox language",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runREPL()
		}
		return runFile(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "cloxgo.toml", "path to a cloxgo.toml config file")
	rootCmd.PersistentFlags().BoolVar(&traceExecFlag, "trace", false, "trace every executed instruction to stderr")

	rootCmd.AddCommand(runCmd, replCmd, buildCmd)
}

// loadConfig merges the on-disk config (if any) with the --trace flag,
// which always wins so a one-off debugging run doesn't require editing
// cloxgo.toml.
func loadConfig() lox.Config {
	cfg, err := lox.LoadConfigFile(configPath)
	if err != nil {
		cfg = lox.DefaultConfig()
	}
	if envTraceIsSet() || traceExecFlag {
		cfg.TraceExecution = true
	}
	return cfg
}

func envTraceIsSet() bool {
	return os.Getenv("CLOXGO_TRACE_EXECUTION") != ""
}
