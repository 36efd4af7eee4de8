package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"refbuild/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify paths, mirror access and index builder executables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureDirectories()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			paint := isTerminal(out)
			failures := 0

			for _, line := range sectionLines("Paths", paint) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if !offline {
				results = append(results, preflight.CheckMirror(cmd.Context(), cfg.Transfer.FTPBaseURL, cfg.Transfer.Token))
			}
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					failures++
				}
				fmt.Fprintln(out, statusLine(r.Name, kind, r.Detail, paint))
			}

			fmt.Fprintln(out)
			for _, line := range sectionLines("Index builders", paint) {
				fmt.Fprintln(out, line)
			}
			statuses := preflight.CheckSystemDeps(cfg)
			if len(statuses) == 0 {
				fmt.Fprintln(out, statusLine("indexers", statusInfo, "none enabled", paint))
			}
			for _, s := range statuses {
				switch {
				case s.Available:
					fmt.Fprintln(out, statusLine(s.Name, statusOK, s.Command, paint))
				case s.Optional:
					fmt.Fprintln(out, statusLine(s.Name, statusWarn, s.Detail, paint))
				default:
					failures++
					fmt.Fprintln(out, statusLine(s.Name, statusError, s.Detail, paint))
				}
			}

			if failures > 0 {
				return errors.New(pluralChecks(failures) + " failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the download mirror check")
	return cmd
}

func pluralChecks(n int) string {
	if n == 1 {
		return "1 check"
	}
	return fmt.Sprintf("%d checks", n)
}
