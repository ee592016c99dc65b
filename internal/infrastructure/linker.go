package infrastructure

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"

	"github.com/quarklang/quarkc/internal/domain"
)

// Linker invokes the host's native linker driver against a temporary
// object file, per spec §6 "Linker invocation": the driver is treated as
// an opaque external collaborator that consumes an object buffer plus an
// argv and returns success/stderr.
type Linker struct {
	LinkerPath   string
	LibraryPaths []string
	Libraries    []string
	TempDir      string
}

func NewLinker(opts domain.CompilationOptions) *Linker {
	path := opts.LinkerPath
	if path == "" {
		path = defaultLinkerDriver()
	}
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = "temp"
	}
	return &Linker{LinkerPath: path, LibraryPaths: opts.LibraryPaths, Libraries: opts.Libraries, TempDir: tempDir}
}

func defaultLinkerDriver() string {
	if runtime.GOOS == "darwin" {
		return "clang"
	}
	return "cc"
}

// Link writes objectData to `temp/quark_<uuid>.o`, runs the linker driver
// against it, and removes the temp file on every exit path, per spec §5
// "Temporary files must be removed on all exit paths".
func (l *Linker) Link(objectData []byte, outputPath string) error {
	if err := os.MkdirAll(l.TempDir, 0o755); err != nil {
		return domain.CompilerError{Type: domain.LinkerError, Message: fmt.Sprintf("cannot create temp dir: %v", err), Code: domain.C0001CodegenFailed}
	}
	objPath := filepath.Join(l.TempDir, fmt.Sprintf("quark_%s.o", uuid.NewString()))
	if err := os.WriteFile(objPath, objectData, 0o644); err != nil {
		return domain.CompilerError{Type: domain.LinkerError, Message: fmt.Sprintf("cannot write object file: %v", err), Code: domain.C0001CodegenFailed}
	}
	defer os.Remove(objPath)

	args := l.buildArgs(objPath, outputPath)
	cmd := exec.Command(l.LinkerPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return domain.CompilerError{
			Type:    domain.LinkerError,
			Message: fmt.Sprintf("linking failed: %v", err),
			Context: stderr.String(),
			Code:    domain.C0001CodegenFailed,
		}
	}
	return nil
}

// buildArgs constructs the platform-specific linker argv template plus any
// user-provided -L/-l equivalents.
func (l *Linker) buildArgs(objPath, outputPath string) []string {
	args := []string{objPath, "-o", outputPath}
	for _, libPath := range l.LibraryPaths {
		args = append(args, "-L"+libPath)
	}
	for _, lib := range l.Libraries {
		args = append(args, "-l"+lib)
	}
	return args
}
