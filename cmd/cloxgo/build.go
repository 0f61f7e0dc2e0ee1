package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloxgo/cloxgo/lox"
	"github.com/cloxgo/cloxgo/lox/serialize"
)

var (
	buildOutputPath string
	buildDisasm     bool
)

var buildCmd = &cobra.Command{
	Use:   "build <script>",
	Short: "Compile a script and write its serialized VMData artifact without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(args[0])
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutputPath, "output", "o", serialize.DefaultArtifactPath, "path to write the serialized artifact")
	buildCmd.Flags().BoolVar(&buildDisasm, "disassemble", false, "print the top-level script's bytecode to stderr")
}

func runBuild(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cloxgo: can't read %s: %s\n", path, err)
		exitCode = exitIOError
		return err
	}

	cfg := loadConfig()
	var errBuf bytes.Buffer
	vm := lox.NewVM(cfg, os.Stdout, &errBuf)

	fn, artifacts, ok := lox.Compile(vm, string(source), &errBuf)
	if !ok {
		os.Stderr.Write(errBuf.Bytes())
		exitCode = exitCompileError
		return fmt.Errorf("compile error")
	}

	if buildDisasm {
		lox.DisassembleChunk(os.Stderr, fn.Chunk(), "<script>")
	}

	data := serialize.Build(vm, artifacts)
	if err := serialize.WriteFile(buildOutputPath, data); err != nil {
		fmt.Fprintf(os.Stderr, "cloxgo: can't write artifact: %s\n", err)
		exitCode = exitIOError
		return err
	}

	exitCode = exitOK
	return nil
}
