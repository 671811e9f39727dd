package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newInspectSessionsCommand(ctx))
	cmd.AddCommand(newInspectSessionCommand(ctx))
	return cmd
}

func newInspectSessionsCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			sessions, err := st.ListSessions(limitFlag)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, []string{
					s.SessionID,
					orDash(s.Exercise),
					formatTime(s.StartedAt),
					formatDuration(s.StartedAt, s.FinishedAt),
					fmt.Sprintf("%d", s.RepCount),
					fmt.Sprintf("%.2f", s.MeanScore),
					fmt.Sprintf("%d", s.WarningsCount),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Session", "Exercise", "Started", "Duration", "Reps", "Score", "Warnings"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum sessions to list")
	return cmd
}

func newInspectSessionCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "session <session-id>",
		Short: "Show one session's summary and rep rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.GetSession(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if jsonFlag {
				if rec.SummaryJSON == "" {
					return fmt.Errorf("session %s has no stored summary", rec.SessionID)
				}
				fmt.Fprintln(out, rec.SummaryJSON)
				return nil
			}

			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, [][]string{
				{"Session", rec.SessionID},
				{"Source", orDash(rec.Source)},
				{"Exercise", orDash(rec.Exercise)},
				{"Forced", fmt.Sprintf("%t", rec.Forced)},
				{"Started", formatTime(rec.StartedAt)},
				{"Duration", formatDuration(rec.StartedAt, rec.FinishedAt)},
				{"Reps", fmt.Sprintf("%d", rec.RepCount)},
				{"Mean score", fmt.Sprintf("%.2f", rec.MeanScore)},
				{"Warnings", fmt.Sprintf("%d", rec.WarningsCount)},
			}, []columnAlignment{alignLeft, alignLeft}))

			reps, err := st.ListReps(rec.SessionID)
			if err != nil {
				return err
			}
			if len(reps) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(reps))
			for _, r := range reps {
				rows = append(rows, []string{
					fmt.Sprintf("%d", r.RepID),
					fmt.Sprintf("%.2fs", r.DurationS),
					fmt.Sprintf("%.1f", r.MinKnee),
					fmt.Sprintf("%.1f", r.MinElbow),
					fmt.Sprintf("%.2f", r.MeanScore),
					fmt.Sprintf("%d", r.WarningsCount),
					orDash(r.TopWarning),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Rep", "Duration", "Min knee", "Min elbow", "Score", "Warnings", "Top warning"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the stored summary JSON")
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatDuration(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return "-"
	}
	return end.Sub(start).Round(time.Second).String()
}
