package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mashrufaorc/posephase/internal/replay"
)

func newReplayCommand(ctx *commandContext) *cobra.Command {
	var framesFlag bool

	cmd := &cobra.Command{
		Use:   "replay <fixture.json>",
		Short: "Replay a fixture and compare against its expectations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fixture, err := replay.LoadFixture(args[0])
			if err != nil {
				return err
			}
			report, err := replay.Run(cfg, fixture)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if fixture.Description != "" {
				fmt.Fprintln(out, fixture.Description)
			}

			if framesFlag {
				rows := make([][]string, 0, len(report.Frames))
				for _, fr := range report.Frames {
					status := "ok"
					switch {
					case fr.Skipped:
						status = "skipped"
					case !fr.Match:
						status = "MISMATCH"
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", fr.Index),
						fmt.Sprintf("%.3f", fr.TimeS),
						orDash(fr.Exercise),
						orDash(fr.Phase),
						orDash(fr.Expected),
						fmt.Sprintf("%d", fr.RepCount),
						status,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Frame", "Time", "Exercise", "Phase", "Expected", "Reps", "Status"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
			}

			fmt.Fprintf(out, "Phases matched: %d/%d\n", report.PhaseMatches, report.PhaseChecks)
			fmt.Fprintf(out, "Reps: %d (expected %d)\n", report.RepCount, report.ExpectReps)

			if !report.Passed() {
				return fmt.Errorf("replay diverged from fixture expectations")
			}
			fmt.Fprintln(out, "Replay matched.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&framesFlag, "frames", false, "Print the per-frame comparison table")
	return cmd
}
