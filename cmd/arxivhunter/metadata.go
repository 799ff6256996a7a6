package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmc/arxivhunter"
)

func (a *app) refreshCmd() *cobra.Command {
	var noCompile bool
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch every stored preprint again",
		Long: `Fetch every stored preprint again and rewrite its row, keeping the
comment. This makes one request per preprint and may take a while.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			n, err := h.Refresh(ctx, func(id string, err error) {
				if err != nil {
					warning("%s: %v", id, err)
					return
				}
				info("refreshed %s", id)
			})
			info("Refreshed %d preprints.", n)
			if rerr := regenerate(ctx, h, noCompile); rerr != nil {
				return rerr
			}
			return err
		}),
	}
	cmd.Flags().BoolVar(&noCompile, "no-compile", false, "rebuild the document but do not compile it")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a preprint's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			rec, err := h.Show(ctx, ids[0])
			if err != nil {
				return err
			}
			comment, err := h.Comment(rec.ID)
			if err != nil {
				return err
			}
			heading("%s  %s", rec.ID, rec.Title)
			info("Authors:  %s", rec.AuthorList())
			info("Category: %s", rec.Category)
			if !rec.Date.IsZero() {
				info("Date:     %s", rec.Date.Format("2006-01-02"))
			}
			info("Abstract: %s", rec.Link)
			info("PDF:      %s", rec.PDFLink)
			if comment != "" {
				info("Comment:  %s", comment)
			}
			if rec.Abstract != "" {
				info("\n%s", rec.Abstract)
			}
			return nil
		}),
	}
}

func (a *app) searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search titles and abstracts of fetched preprints",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			recs, err := h.Search(ctx, strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				info("No results found.")
				return nil
			}
			for _, r := range recs {
				heading("[%s] %s", r.ID, r.Title)
				info("  %s", r.AuthorList())
				info("  %s", r.Category)
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show table statistics",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			st, err := h.Stats(ctx)
			if err != nil {
				return err
			}
			info("Root:             %s", h.Config().Root)
			info("Categories:       %d", st.Stores)
			info("Preprints:        %d", st.Rows)
			info("Indexed metadata: %d", st.Index.Records)
			if !st.Index.LastFetched.IsZero() {
				info("Last fetch:       %s", st.Index.LastFetched.Local().Format("2006-01-02 15:04"))
			}
			return nil
		}),
	}
}

func (a *app) exportCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the table as BibTeX or RIS",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			var w io.Writer = out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := h.Export(ctx, w, format); err != nil {
				return err
			}
			if f, ok := w.(*os.File); ok && f != os.Stdout {
				if err := f.Close(); err != nil {
					return err
				}
				success("wrote %s", output)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", arxivhunter.FormatBibTeX, "bibtex or ris")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) latestCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "latest <archive>",
		Short:   "List the newest submissions of an arXiv archive",
		Example: "  arxivhunter latest hep-th\n  arxivhunter latest cs.LG",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			listings, err := h.Latest(ctx, args[0])
			if err != nil {
				return err
			}
			if len(listings) == 0 {
				info("No new submissions.")
				return nil
			}
			for _, l := range listings {
				heading("[%s] %s", l.ID, l.Title)
				if len(l.Authors) > 0 {
					info("  %s", strings.Join(l.Authors, ", "))
				}
			}
			return nil
		}),
	}
}

func (a *app) downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download [id]...",
		Short: "Download preprint PDFs",
		Long: `Download the PDFs of the given preprints, or of every preprint in the
table when no identifier is given, into the pdf directory of the storage
root. Files already present are not downloaded again.`,
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			n, err := h.Download(ctx, func(id string, err error) {
				if err != nil {
					warning("%s: %v", id, err)
					return
				}
				info("%s", arxivhunter.PDFFile(h.Config().PDFDir(), id))
			}, ids...)
			info("%d PDFs in %s", n, h.Config().PDFDir())
			return err
		}),
	}
}
