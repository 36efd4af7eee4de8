package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"refbuild/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var speciesKey string
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded builds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureDirectories()
			if err != nil {
				return err
			}
			store, err := ledger.OpenFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return showRun(cmd, store, args[0])
			}

			runs, err := store.ListRuns(cmd.Context(), ledger.RunFilter{Species: speciesKey, Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.Species,
					strconv.Itoa(run.Release),
					run.Assembly,
					string(run.Status),
					humanize.Time(run.StartedAt),
					formatDuration(run.Duration()),
				})
			}
			fmt.Fprintln(out, formatTable(
				[]column{col("Run"), col("Species"), num("Release"), col("Assembly"), col("Status"), col("Started"), num("Duration")},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&speciesKey, "species", "s", "", "Only show runs for this species")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	return cmd
}

func showRun(cmd *cobra.Command, store *ledger.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	stages, err := store.Stages(cmd.Context(), runID)
	if err != nil {
		return err
	}
	artifacts, err := store.Artifacts(cmd.Context(), runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	paint := isTerminal(out)
	summary := [][2]string{
		{"Run", run.ID},
		{"Species", run.Species},
		{"Release", strconv.Itoa(run.Release)},
		{"Annotation release", strconv.Itoa(run.GTFRelease)},
		{"Assembly", fmt.Sprintf("%s (%s)", run.Assembly, run.AssemblyKind)},
		{"Bundle", run.BundleDir},
		{"Status", string(run.Status)},
		{"Started", run.StartedAt.Local().Format(time.DateTime)},
		{"Duration", formatDuration(run.Duration())},
	}
	if run.ErrorMessage != "" {
		summary = append(summary, [2]string{"Error", run.ErrorMessage})
	}
	fmt.Fprintln(out, formatFields(summary))

	for _, line := range sectionLines("Stages", paint) {
		fmt.Fprintln(out, line)
	}
	for _, stage := range stages {
		fmt.Fprintln(out, statusLine(stage.Name, stageKind(stage.Status), stage.Detail, paint))
	}

	if len(artifacts) > 0 {
		rows := make([][]string, 0, len(artifacts))
		for _, a := range artifacts {
			checksum := a.SHA256
			if len(checksum) > 12 {
				checksum = checksum[:12]
			}
			rows = append(rows, []string{a.Stage, a.Path, humanize.IBytes(uint64(max(a.Bytes, 0))), checksum})
		}
		fmt.Fprintln(out, formatTable(
			[]column{col("Stage"), col("Path"), num("Size"), col("SHA-256")},
			rows,
		))
	}
	return nil
}

func stageKind(status ledger.Status) statusKind {
	switch status {
	case ledger.StatusSucceeded:
		return statusOK
	case ledger.StatusFailed:
		return statusError
	case ledger.StatusSkipped:
		return statusWarn
	default:
		return statusInfo
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}
