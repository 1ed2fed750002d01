package tex

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultCompileTimeout bounds a single xelatex run.
const DefaultCompileTimeout = 2 * time.Minute

// Compiler drives the external XeLaTeX compiler over emitted .tex files.
type Compiler struct {
	// Binary is the compiler executable, "xelatex" by default.
	Binary string

	// Timeout bounds each compile, DefaultCompileTimeout when zero.
	Timeout time.Duration

	// KeepTex leaves the .tex source next to the PDF.
	KeepTex bool
}

// CompileResult describes one finished compile.
type CompileResult struct {
	PDFPath  string
	Duration time.Duration
}

// Compile runs the compiler on texPath, producing a PDF in the same
// directory. Auxiliary files (.aux, .log, and the .tex itself unless
// KeepTex is set) are removed on success.
func (c *Compiler) Compile(ctx context.Context, texPath string) (*CompileResult, error) {
	binary := c.Binary
	if binary == "" {
		binary = "xelatex"
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultCompileTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outDir := filepath.Dir(texPath)
	cmd := exec.CommandContext(ctxWithTimeout, binary,
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", outDir,
		texPath,
	)
	cmd.Dir = outDir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w\n%s", binary, err, tail(output.String(), 20))
	}
	duration := time.Since(start)

	base := strings.TrimSuffix(texPath, ".tex")
	for _, ext := range []string{".aux", ".log", ".xdv"} {
		os.Remove(base + ext)
	}
	if !c.KeepTex {
		os.Remove(texPath)
	}

	return &CompileResult{
		PDFPath:  base + ".pdf",
		Duration: duration,
	}, nil
}

// tail returns the last n lines of compiler output for error context.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
