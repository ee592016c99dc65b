// Package main provides the quarkc command-line compiler driver.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quarklang/quarkc/internal/application"
	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/infrastructure"
)

var (
	outputPath  string
	optLevel    int
	debugInfo   bool
	target      string
	warnAsError bool
	verbose     bool
	useMock     bool
	emitLLVM    bool
	linkerPath  string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "quarkc",
		Short:   "Ahead-of-time compiler for the Quark language",
		Version: "0.1.0",
	}
	root.AddCommand(buildCmd())
	return root
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <file> [file...]",
		Short: "Compile one or more Quark source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&outputPath, "output", "o", "", "output path (default a.out, or out.ll with --emit-llvm)")
	flags.IntVarP(&optLevel, "optimize", "O", 0, "optimization level (0-3), forwarded to llc")
	flags.BoolVarP(&debugInfo, "debug", "g", false, "generate debug information")
	flags.StringVar(&target, "target", "", "target triple")
	flags.BoolVar(&warnAsError, "werror", false, "treat warnings as errors")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	flags.BoolVar(&useMock, "mock", false, "use mock components instead of a real toolchain")
	flags.BoolVar(&emitLLVM, "emit-llvm", false, "stop after emitting textual LLVM IR")
	flags.StringVar(&linkerPath, "linker", "", "linker driver to invoke (default cc/clang)")
	return cmd
}

// runBuild wires a CompilerFactory per the current flags, compiles every
// input file to LLVM IR, and for a normal build hands the result to llc and
// the system linker. This mirrors the teacher's cmd/staticlang flow but
// replaces its single-pass flag.Parse with cobra subcommands and pushes the
// object/link steps (which the teacher's CLI left undone) into the driver.
func runBuild(files []string) error {
	log := logrus.StandardLogger()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	output := outputPath
	if output == "" {
		if emitLLVM {
			output = "out.ll"
		} else {
			output = "a.out"
		}
	}

	cfg := application.DefaultCompilerConfig()
	cfg.UseMockComponents = useMock
	cfg.Log = log
	cfg.Verbose = verbose
	cfg.CompilationOptions = domain.CompilationOptions{
		OptimizationLevel: optLevel,
		DebugInfo:         debugInfo,
		TargetTriple:      target,
		OutputPath:        output,
		WarningsAsErrors:  warnAsError,
		LinkerPath:        linkerPath,
		Verbose:           verbose,
		UseMockComponents: useMock,
	}
	factory := application.NewCompilerFactory(cfg)

	var asm []byte
	var err error
	if len(files) == 1 {
		asm, err = compileOne(factory, files[0])
	} else {
		asm, err = compileMany(factory, files)
	}
	if err != nil {
		return fmt.Errorf("quarkc: %w", err)
	}

	if emitLLVM {
		return os.WriteFile(output, asm, 0o644)
	}

	if useMock {
		return os.WriteFile(output, asm, 0o644)
	}

	objData, err := assembleObject(asm, cfg.CompilationOptions)
	if err != nil {
		return fmt.Errorf("quarkc: %w", err)
	}
	linker := infrastructure.NewLinker(cfg.CompilationOptions)
	if err := linker.Link(objData, output); err != nil {
		return fmt.Errorf("quarkc: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "quarkc: wrote %s\n", output)
	}
	return nil
}

func compileOne(factory *application.CompilerFactory, file string) ([]byte, error) {
	input, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer input.Close()

	var out bytes.Buffer
	pipeline := factory.CreateCompilerPipeline()
	if err := pipeline.Compile(file, input, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func compileMany(factory *application.CompilerFactory, files []string) ([]byte, error) {
	opened := make([]*os.File, len(files))
	readers := make([]io.Reader, len(files))
	for i, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		opened[i] = f
		readers[i] = f
	}
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	var out bytes.Buffer
	pipeline := factory.CreateMultiFileCompilerPipeline()
	if err := pipeline.CompileFiles(files, readers, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
