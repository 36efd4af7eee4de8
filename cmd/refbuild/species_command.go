package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"refbuild/internal/ensembl"
	"refbuild/internal/species"
)

func newSpeciesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "species",
		Short:       "List supported species",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			records := species.All()
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				pinned := "-"
				if rec.PinnedRelease > 0 {
					pinned = strconv.Itoa(rec.PinnedRelease)
				}
				rows = append(rows, []string{
					rec.Key,
					rec.CommonName(),
					rec.Binomial(),
					rec.AssemblyName,
					species.DeriveAssemblyKind(rec.Key).String(),
					ensembl.ShortName(rec.ScientificName),
					pinned,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatTable(
				append(cols("Key", "Name", "Species", "Assembly", "Kind", "Short name"), num("Annotation release")),
				rows,
			))
			return nil
		},
	}
}

func newReleasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "releases",
		Short:       "List supported Ensembl releases and their BioMart hosts",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			releases := ensembl.Releases()
			rows := make([][]string, 0, len(releases))
			for _, release := range releases {
				host, err := ensembl.ResolveEndpoint(release)
				if err != nil {
					return err
				}
				rows = append(rows, []string{strconv.Itoa(release), host})
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatTable([]column{num("Release"), col("BioMart host")}, rows))
			return nil
		},
	}
}
