package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tmc/arxivhunter"
)

func (a *app) rebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Regenerate the LaTeX document from every category",
		Long: `Regenerate the LaTeX document from every category table. Categories
whose table became empty are deleted.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			sections, err := h.Rebuild()
			if err != nil {
				return err
			}
			for _, s := range sections {
				info("%-50s %d", s.Caption, len(s.Rows))
			}
			success("wrote %s", h.Document().Path())
			return nil
		}),
	}
}

func (a *app) compileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "Compile the LaTeX document",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			if err := h.Compile(ctx); err != nil {
				return err
			}
			success("compiled %s", h.Config().PDFPath())
			return nil
		}),
	}
}

func (a *app) viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Open the compiled document in the viewer",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			return h.View()
		}),
	}
}
