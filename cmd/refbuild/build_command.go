package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"refbuild/internal/config"
	"refbuild/internal/deps"
	"refbuild/internal/indexers"
	"refbuild/internal/ledger"
	"refbuild/internal/pipeline"
	"refbuild/internal/plan"
	"refbuild/internal/preflight"
	"refbuild/internal/services"
	"refbuild/internal/transfer"
)

type buildFlags struct {
	species string
	release int
	token   string
	threads int
}

// apply copies command line overrides into cfg.
func (f *buildFlags) apply(cfg *config.Config) error {
	if token := strings.TrimSpace(f.token); token != "" {
		cfg.Transfer.Token = token
	}
	if f.threads < 0 {
		return services.Wrap(services.ErrConfiguration, "config", "threads override", "--threads must be positive", nil)
	}
	if f.threads > 0 {
		cfg.Indexers.Threads = f.threads
	}
	return nil
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Download, split, reconcile and index one reference bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cfg); err != nil {
				return err
			}
			p, err := plan.Resolve(cfg, flags.species, flags.release)
			if err != nil {
				return err
			}
			if _, err := ctx.ensureDirectories(); err != nil {
				return err
			}
			if err := requirePreflight(cmd, cfg); err != nil {
				return err
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			store, err := ledger.OpenFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			pl, err := pipeline.New(pipeline.Dependencies{
				Fetcher: transfer.NewFromConfig(cfg, logger),
				Indexer: indexers.NewFromConfig(cfg, logger),
				Ledger:  store,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			result, err := pl.Build(cmd.Context(), p)
			if err != nil {
				if errors.Is(err, pipeline.ErrBundleLocked) {
					return fmt.Errorf("%w (another refbuild is writing this bundle)", err)
				}
				if result != nil {
					return fmt.Errorf("run %s failed: %w", result.RunID, err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatFields(buildSummary(result)))
			if len(result.Run.Tables) > 0 {
				fmt.Fprintln(out, formatTable(
					[]column{col("Table"), num("Rows"), num("Dropped"), col("Path")},
					tableRows(result.Run.Tables),
				))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.species, "species", "s", "", "Species key (see `refbuild species`)")
	cmd.Flags().IntVarP(&flags.release, "release", "r", 0, "Ensembl release")
	cmd.Flags().StringVar(&flags.token, "token", "", "Bearer token for the download mirror (overrides transfer.token)")
	cmd.Flags().IntVarP(&flags.threads, "threads", "t", 0, "Threads passed to index builders (overrides indexers.threads)")
	_ = cmd.MarkFlagRequired("species")
	_ = cmd.MarkFlagRequired("release")
	return cmd
}

// requirePreflight aborts before any download when paths or builder
// executables are unusable.
func requirePreflight(cmd *cobra.Command, cfg *config.Config) error {
	var problems []string
	for _, r := range preflight.Failed(preflight.RunAll(cmd.Context(), cfg)) {
		problems = append(problems, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	for _, s := range deps.Missing(preflight.CheckSystemDeps(cfg)) {
		problems = append(problems, fmt.Sprintf("%s: %s", s.Name, s.Detail))
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(problems, "; "), nil)
}

func buildSummary(result *pipeline.Result) [][2]string {
	run := result.Run
	rows := [][2]string{
		{"Run", result.RunID},
		{"Bundle", result.Bundle},
		{"Duration", result.Duration.Round(time.Second).String()},
		{"Sequences", humanize.Comma(int64(len(run.SequenceIDs)))},
		{"Genome FASTA", run.Plan.GenomeFasta},
		{"Annotation", run.Plan.FilteredGTF},
	}
	for _, idx := range run.Indexes {
		rows = append(rows, [2]string{"Index (" + idx.Tool + ")", idx.Link})
	}
	return rows
}

func tableRows(tables []pipeline.TableResult) [][]string {
	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []string{t.Name, humanize.Comma(int64(t.Rows)), humanize.Comma(int64(t.Dropped)), t.Path})
	}
	return rows
}
