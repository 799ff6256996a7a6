package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/tmc/arxivhunter"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// out is where user-facing messages go; tests swap it.
var out io.Writer = os.Stdout

func info(format string, a ...any) {
	fmt.Fprintf(out, format+"\n", a...)
}

func success(format string, a ...any) {
	green.Fprintf(out, "✓ "+format+"\n", a...)
}

func warning(format string, a ...any) {
	yellow.Fprintf(out, "! "+format+"\n", a...)
}

func heading(format string, a ...any) {
	cyan.Fprintf(out, format+"\n", a...)
}

// printError prints err to stderr with a hint for the error kinds users can
// act on.
func printError(err error) {
	red.Fprintf(os.Stderr, "error: %v\n", err)
	var hint string
	switch {
	case errors.Is(err, arxivhunter.ErrNetwork):
		hint = "check the identifier and your connection to arXiv"
	case errors.Is(err, arxivhunter.ErrParse):
		hint = "the abstract page did not look as expected; try again later or report the identifier"
	case errors.Is(err, arxivhunter.ErrExternalTool):
		hint = "the LaTeX run failed; fix the offending row with `arxivhunter edit` or check the `latex` setting"
	}
	if hint != "" {
		fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
	}
}
