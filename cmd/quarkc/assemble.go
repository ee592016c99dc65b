package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/quarklang/quarkc/internal/domain"
)

// assembleObject shells out to llc the same way infrastructure.TextLLVMBackend
// does internally for EmitObject, but starting from already-rendered IR text
// instead of a live module — the pipeline only ever hands the CLI text, not
// the module object, so object emission has to happen here rather than by
// reusing EmitObject directly.
func assembleObject(irText []byte, opts domain.CompilationOptions) ([]byte, error) {
	irFile, err := os.CreateTemp("", "quark_*.ll")
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	defer os.Remove(irFile.Name())
	if _, err := irFile.Write(irText); err != nil {
		irFile.Close()
		return nil, fmt.Errorf("assemble: %w", err)
	}
	irFile.Close()

	objFile, err := os.CreateTemp("", "quark_*.o")
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	defer os.Remove(objFile.Name())
	objFile.Close()

	args := []string{"-filetype=obj", fmt.Sprintf("-O%d", opts.OptimizationLevel), "-o", objFile.Name(), irFile.Name()}
	if opts.TargetTriple != "" {
		args = append([]string{"-mtriple=" + opts.TargetTriple}, args...)
	}
	cmd := exec.Command("llc", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("llc failed: %w: %s", err, stderr.String())
	}
	return os.ReadFile(objFile.Name())
}
