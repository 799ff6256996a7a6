package arxivhunter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// byproductExts are the auxiliary files LaTeX leaves next to the document.
var byproductExts = []string{"log", "aux", "out", "nav", "snm", "toc", "dvi"}

// Compiler turns the aggregate document into a PDF and opens it.
type Compiler struct {
	root     string
	document string
	latex    string
	viewer   string
	log      *zap.Logger
}

// NewCompiler returns a Compiler configured from cfg.
func NewCompiler(cfg *Config, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		root:     cfg.Root,
		document: cfg.Document,
		latex:    cfg.LaTeX,
		viewer:   cfg.Viewer,
		log:      log,
	}
}

// Compile runs LaTeX twice so cross-references resolve, then removes the
// byproduct files. A non-zero exit yields ErrExternalTool.
func (c *Compiler) Compile(ctx context.Context) error {
	tex := c.document + ".tex"
	if _, err := os.Stat(filepath.Join(c.root, tex)); err != nil {
		return fmt.Errorf("%w: %w", ErrFileState, err)
	}

	for pass := 1; pass <= 2; pass++ {
		c.log.Debug("running latex", zap.String("latex", c.latex), zap.Int("pass", pass))
		cmd := exec.CommandContext(ctx, c.latex, "-halt-on-error", "-interaction=nonstopmode", tex)
		cmd.Dir = c.root
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%w: %s pass %d: %w\n%s", ErrExternalTool, c.latex, pass, err, tail(out.String(), 20))
		}
	}
	return c.Clean()
}

// Clean deletes the byproduct files of a compilation.
func (c *Compiler) Clean() error {
	for _, ext := range byproductExts {
		path := filepath.Join(c.root, c.document+"."+ext)
		err := os.Remove(path)
		switch {
		case err == nil:
			c.log.Debug("deleted byproduct", zap.String("path", path))
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("delete %s: %w", path, err)
		}
	}
	return nil
}

// View starts the configured viewer on the compiled PDF without waiting
// for it to exit. The viewer outlives the process.
func (c *Compiler) View() error {
	pdf := filepath.Join(c.root, c.document+".pdf")
	if _, err := os.Stat(pdf); err != nil {
		return fmt.Errorf("%w: %w", ErrFileState, err)
	}
	cmd := exec.Command(c.viewer, pdf)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start %s: %w", ErrExternalTool, c.viewer, err)
	}
	return cmd.Process.Release()
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
