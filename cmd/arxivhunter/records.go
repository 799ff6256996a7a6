package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmc/arxivhunter"
)

func (a *app) addCmd() *cobra.Command {
	var (
		comment   string
		yes       bool
		noCompile bool
	)
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a preprint to the table",
		Long: `Fetch a preprint's abstract page and add a row for it to its category's
table. If the preprint is already in the table you are asked whether to
replace its comment.`,
		Example: `  arxivhunter add 2301.00001 -c "read section 3"
  arxivhunter add https://arxiv.org/abs/hep-th/9901001`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			id := ids[0]

			rec, err := h.Add(ctx, id, comment)
			switch {
			case err == nil:
				success("added %s to %s", rec.ID, arxivhunter.Caption(rec.StoreName()))
			case errors.Is(err, arxivhunter.ErrExists):
				current, cerr := h.Comment(id)
				if cerr != nil {
					return cerr
				}
				info("%s is already in the table.", id)
				info("The current comment is : %s", current)
				info("The   input comment is : %s", comment)
				if !yes {
					ok, err := askYesNo(a.in, out, "Replace the current comment by the input comment?", false)
					if err != nil {
						return err
					}
					if !ok {
						info("Nothing changed.")
						return nil
					}
				}
				if _, err := h.Edit(ctx, id, comment); err != nil {
					return err
				}
				success("updated the comment of %s", id)
			default:
				return err
			}
			return regenerate(ctx, h, noCompile)
		}),
	}
	cmd.Flags().StringVarP(&comment, "comment", "c", "-", "comment stored with the preprint")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace an existing comment without asking")
	cmd.Flags().BoolVar(&noCompile, "no-compile", false, "rebuild the document but do not compile it")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var (
		comment   string
		noCompile bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a preprint's comment",
		Long: `Replace the comment stored for a preprint. The abstract page is fetched
again, so title, authors and category are refreshed as well.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if _, err := h.Edit(ctx, ids[0], comment); err != nil {
				return err
			}
			success("updated the comment of %s", ids[0])
			return regenerate(ctx, h, noCompile)
		}),
	}
	cmd.Flags().StringVarP(&comment, "comment", "c", "-", "new comment")
	cmd.Flags().BoolVar(&noCompile, "no-compile", false, "rebuild the document but do not compile it")
	_ = cmd.MarkFlagRequired("comment")
	return cmd
}

func (a *app) removeCmd() *cobra.Command {
	var noCompile bool
	cmd := &cobra.Command{
		Use:     "remove <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove preprints from the table",
		Args:    cobra.MinimumNArgs(1),
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			missing, err := h.Remove(ctx, ids...)
			if err != nil {
				return err
			}
			gone := make(map[string]bool, len(missing))
			for _, id := range missing {
				gone[id] = true
				warning("%s is not in the table", id)
			}
			for _, id := range ids {
				if !gone[id] {
					success("removed %s", id)
				}
			}
			if len(missing) == len(ids) {
				return nil
			}
			return regenerate(ctx, h, noCompile)
		}),
	}
	cmd.Flags().BoolVar(&noCompile, "no-compile", false, "rebuild the document but do not compile it")
	return cmd
}

func (a *app) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <id>",
		Short: "Print the comment stored for a preprint",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			c, err := h.Comment(ids[0])
			if err != nil {
				return err
			}
			if c == "" {
				warning("%s is not in the table", ids[0])
				return nil
			}
			info("%s", c)
			return nil
		}),
	}
}

// regenerate rebuilds the document and, unless told otherwise, compiles it.
func regenerate(ctx context.Context, h *arxivhunter.Hunter, noCompile bool) error {
	sections, err := h.Rebuild()
	if err != nil {
		return err
	}
	info("Rebuilt the document with %d categories.", len(sections))
	if noCompile {
		return nil
	}
	if err := h.Compile(ctx); err != nil {
		return err
	}
	success("compiled %s", h.Config().PDFPath())
	return nil
}

// askYesNo asks question on w and reads the answer from r. An empty answer
// picks def.
func askYesNo(r io.Reader, w io.Writer, question string, def bool) (bool, error) {
	prompt := " [y/N] "
	if def {
		prompt = " [Y/n] "
	}
	sc := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, question+prompt)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return false, err
			}
			return def, nil
		}
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "":
			return def, nil
		case "y", "ye", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(w, "Please respond with 'yes' or 'no' (or 'y' or 'n').")
	}
}
