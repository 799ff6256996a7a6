package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tmc/arxivhunter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the global flags and the state shared by subcommands.
type app struct {
	configPath string
	root       string
	verbose    bool

	logger *zap.Logger
	in     io.Reader
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "arxivhunter",
		Short: "Keep a LaTeX table of arXiv preprints",
		Long: `arxivhunter keeps a personal table of arXiv preprints, one table per
subject category, and typesets it into a single PDF.

Run without arguments to open the compiled table in the configured viewer.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			a.in = cmd.InOrStdin()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: a.run(func(ctx context.Context, h *arxivhunter.Hunter, args []string) error {
			return h.View()
		}),
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/arxivhunter/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.root, "root", "", "storage root (overrides config and "+arxivhunter.RootEnv+")")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "print more messages")

	cmd.AddCommand(
		a.addCmd(),
		a.editCmd(),
		a.removeCmd(),
		a.commentCmd(),
		a.rebuildCmd(),
		a.compileCmd(),
		a.viewCmd(),
		a.refreshCmd(),
		a.showCmd(),
		a.searchCmd(),
		a.statsCmd(),
		a.exportCmd(),
		a.latestCmd(),
		a.downloadCmd(),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info("arxivhunter %s (commit: %s, built: %s)", version, commit, date)
		},
	}
}

// run loads the configuration, opens the bibliography and hands it to fn.
func (a *app) run(fn func(ctx context.Context, h *arxivhunter.Hunter, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := arxivhunter.LoadConfig(a.configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if a.root != "" {
			cfg.Root = a.root
		}
		h, err := arxivhunter.New(cfg, a.logger)
		if err != nil {
			return fmt.Errorf("opening %s: %w", cfg.Root, err)
		}
		defer h.Close()
		return fn(cmd.Context(), h, args)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// parseIDs validates every argument as an arXiv identifier.
func parseIDs(args []string) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := arxivhunter.ParseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
