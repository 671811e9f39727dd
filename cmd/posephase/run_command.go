package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mashrufaorc/posephase/internal/pose"
	"github.com/mashrufaorc/posephase/internal/session"
	"github.com/mashrufaorc/posephase/internal/speech"
	"github.com/mashrufaorc/posephase/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var inputFlag string
	var exerciseFlag string
	var summaryFlag string
	var speakFlag bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze a recorded pose stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			src, err := pose.OpenJSONL(inputFlag)
			if err != nil {
				return err
			}
			defer src.Close()

			var st *store.Store
			if *ctx.dbFlag != "" {
				st, err = ctx.openStore()
				if err != nil {
					return err
				}
				defer st.Close()
			}

			var speaker *speech.Speaker
			if speakFlag {
				if !cfg.Speech.Enabled {
					return fmt.Errorf("--speak requires speech.enabled in the config")
				}
				engine, err := speech.NewExecEngine(cfg.Speech.Command)
				if err != nil {
					return err
				}
				gap := time.Duration(cfg.Speech.MinGapSeconds * float64(time.Second))
				speaker = speech.NewSpeaker(engine, gap, logger)
				defer speaker.Close()
			}

			sessionID := uuid.NewString()
			runner, err := session.NewRunner(cfg, session.Options{
				SessionID:      sessionID,
				Source:         inputFlag,
				ForcedExercise: exerciseFlag,
				Store:          st,
				Speaker:        speaker,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			summary, err := runner.Run(src)
			if err != nil {
				return err
			}

			if summaryFlag != "" {
				if err := writeSummaryJSON(summaryFlag, summary); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(sessionID, summary))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Pose stream file (JSONL)")
	cmd.Flags().StringVarP(&exerciseFlag, "exercise", "e", "", "Pin the exercise (squat, pushup, lunge)")
	cmd.Flags().StringVar(&summaryFlag, "summary", "", "Write the session summary JSON to this path")
	cmd.Flags().BoolVar(&speakFlag, "speak", false, "Speak feedback through the configured TTS command")
	cmd.MarkFlagRequired("input")

	return cmd
}

func writeSummaryJSON(path string, summary session.Summary) error {
	data, err := summary.MarshalIndent()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}

func renderSummary(sessionID string, s session.Summary) string {
	rows := [][]string{
		{"Session", sessionID},
		{"Exercise", orDash(s.Exercise)},
		{"Reps", fmt.Sprintf("%d", s.RepCount)},
		{"Mean score", fmt.Sprintf("%.2f", s.MeanScore)},
		{"Warnings", fmt.Sprintf("%d", s.WarningsCount)},
	}

	phases := make([]string, 0, len(s.PhaseCounts))
	for p := range s.PhaseCounts {
		phases = append(phases, p)
	}
	sort.Strings(phases)
	for _, p := range phases {
		rows = append(rows, []string{"Phase " + p, fmt.Sprintf("%d frames", s.PhaseCounts[p])})
	}
	for _, w := range s.WarningsExamples {
		rows = append(rows, []string{"Warning", fmt.Sprintf("%s (%d)", w, s.WarningsBreakdown[w])})
	}

	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
