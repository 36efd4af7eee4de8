package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"refbuild/internal/config"
	"refbuild/internal/fasta"
	"refbuild/internal/indexers"
	"refbuild/internal/plan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var speciesKey string
	var release int
	var showQueries bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a build would download and produce",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p, err := plan.Resolve(cfg, speciesKey, release)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatFields(p.Summary()))

			tables := []plan.Table{p.Genes, p.Transcripts}
			for _, o := range p.Orthologs {
				tables = append(tables, o.Table)
			}
			rows := make([][]string, 0, len(tables))
			for _, t := range tables {
				rows = append(rows, []string{t.Name, yesNo(t.Reconciled()), t.Path})
			}
			fmt.Fprintln(out, formatTable(cols("Table", "Reconciled", "Path"), rows))

			if len(p.Indexers) > 0 {
				commands, err := indexerCommands(cfg, p)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatTable(cols("Indexer", "Command"), commands))
			}

			if showQueries {
				for _, t := range tables {
					fmt.Fprintf(out, "%s:\n%s\n", t.Name, t.URL)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&speciesKey, "species", "s", "", "Species key")
	cmd.Flags().IntVarP(&release, "release", "r", 0, "Ensembl release")
	cmd.Flags().BoolVar(&showQueries, "queries", false, "Print the BioMart query URLs")
	_ = cmd.MarkFlagRequired("species")
	_ = cmd.MarkFlagRequired("release")
	return cmd
}

// indexerCommands lists the command line of every enabled builder. The
// sequence files do not exist until the split stage, so they are shown as a
// glob over the sequence directory.
func indexerCommands(cfg *config.Config, p *plan.Plan) ([][]string, error) {
	in := p.IndexInput([]string{filepath.Join(p.SequenceDir, "*"+fasta.Extension)})
	rows := make([][]string, 0, len(p.Indexers))
	for _, name := range p.Indexers {
		args, err := indexers.Arguments(name, in)
		if err != nil {
			return nil, err
		}
		command := append([]string{cfg.IndexerBinary(name)}, args...)
		rows = append(rows, []string{name, strings.Join(command, " ")})
	}
	return rows, nil
}
