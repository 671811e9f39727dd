package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mashrufaorc/posephase/internal/eval"
)

func newMetricsCommand(ctx *commandContext) *cobra.Command {
	var sessionFlag string
	var gtFlag string
	var gtRepsFlag int

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Score a stored session against labeled ground truth",
		Long: `Compares a session's per-frame phase predictions against a ground-truth
phase file (a JSON array of phase names, one per frame, aligned by frame
index) and prints agreement metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			pred, err := st.FramePhases(sessionFlag)
			if err != nil {
				return err
			}
			gt, err := loadPhaseFile(gtFlag)
			if err != nil {
				return err
			}
			if len(pred) > len(gt) {
				pred = pred[:len(gt)]
			} else if len(gt) > len(pred) {
				gt = gt[:len(pred)]
			}

			report, err := eval.Compute(gt, pred)
			if err != nil {
				return err
			}
			if gtRepsFlag >= 0 {
				rec, err := st.GetSession(sessionFlag)
				if err != nil {
					return err
				}
				report.WithReps(rec.RepCount, gtRepsFlag)
			}

			out := cmd.OutOrStdout()
			summaryRows := [][]string{
				{"Frame accuracy", fmt.Sprintf("%.4f", eval.Round(report.FrameAccuracy))},
				{"Transition accuracy", fmt.Sprintf("%.4f", eval.Round(report.TransitionAccuracy))},
				{"Mean IoU", fmt.Sprintf("%.4f", eval.Round(report.MeanIoU))},
				{"F1 (macro)", fmt.Sprintf("%.4f", eval.Round(report.Averages.F1Macro))},
				{"F1 (weighted)", fmt.Sprintf("%.4f", eval.Round(report.Averages.F1Weighted))},
			}
			if report.Reps != nil {
				summaryRows = append(summaryRows,
					[]string{"Reps predicted", fmt.Sprintf("%d", report.Reps.Predicted)},
					[]string{"Reps actual", fmt.Sprintf("%d", report.Reps.Actual)},
					[]string{"Rep accuracy", fmt.Sprintf("%.4f", eval.Round(report.Reps.Accuracy))},
				)
			}
			fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, summaryRows,
				[]columnAlignment{alignLeft, alignRight}))

			rows := make([][]string, 0, len(report.PerLabel))
			for _, m := range report.PerLabel {
				rows = append(rows, []string{
					m.Label,
					fmt.Sprintf("%.4f", eval.Round(m.Precision)),
					fmt.Sprintf("%.4f", eval.Round(m.Recall)),
					fmt.Sprintf("%.4f", eval.Round(m.F1)),
					fmt.Sprintf("%d", m.Support),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Phase", "Precision", "Recall", "F1", "Support"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionFlag, "session", "s", "", "Session ID to score")
	cmd.Flags().StringVar(&gtFlag, "gt", "", "Ground-truth phase file (JSON array)")
	cmd.Flags().IntVar(&gtRepsFlag, "gt-reps", -1, "Ground-truth rep count")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("gt")

	return cmd
}

func loadPhaseFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ground truth %s: %w", path, err)
	}
	var phases []string
	if err := json.Unmarshal(data, &phases); err != nil {
		return nil, fmt.Errorf("parse ground truth %s: %w", path, err)
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("ground truth %s: no phases", path)
	}
	return phases, nil
}
