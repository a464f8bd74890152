package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zeu5/lewis-signaling/analysis"
	"github.com/zeu5/lewis-signaling/core"
	"github.com/zeu5/lewis-signaling/policies"
)

func CompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Run every learning mode on the same seeds and compare success rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmp, err := prepareComparison()
			if err != nil {
				return err
			}
			flags.ResolveSeed()
			if err := flags.Record(); err != nil {
				logger.Warn("recording config", "error", err)
			}

			out, isTerm := terminal(cmd)
			if isTerm && !flags.JSON {
				cmp.Output = out
			} else {
				cmp.Output = io.Discard
			}

			ctx, cancel := interruptContext(cmd.Context())
			defer cancel()

			results := cmp.Run(ctx, flags.NumRuns, &core.RunConfig{
				Rounds:        flags.Rounds,
				Seed:          flags.Seed,
				ProgressEvery: flags.ProgressEvery,
				RecordTrace:   flags.RecordTraces,
				Logger:        logger,
			}, flags.Parallelism)
			if ctx.Err() != nil {
				return core.ErrCancelled
			}
			core.LogSummary(logger, results)

			for _, e := range cmp.Experiments {
				for _, r := range results[e.Name] {
					if r == nil {
						return fmt.Errorf("%s: run missing", e.Name)
					}
					if r.IsError() {
						return fmt.Errorf("%s run %d: %w", e.Name, r.Run, r.Error)
					}
				}
			}

			if flags.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return writeSummary(cmd.OutOrStdout(), cmp, results)
		},
	}
}

func prepareComparison() (*core.ParallelComparison, error) {
	env, err := flags.Environment()
	if err != nil {
		return nil, err
	}
	cmp := core.NewParallelComparison(flags.Game(), env)
	for _, m := range policies.Modes() {
		sc, err := policies.NewStrategyConstructor(m)
		if err != nil {
			return nil, err
		}
		cmp.AddExperiment(&core.ParallelExperiment{
			Name:     string(m),
			Strategy: sc,
		})
	}

	successCmp := []core.ComparatorConstructor{
		analysis.NewJSONComparatorConstructor(flags.SavePath, "success", logger),
	}
	if flags.Chart {
		successCmp = append(successCmp, analysis.NewChartComparatorConstructor(flags.SavePath, logger))
	}
	cmp.AddAnalysis(
		"success",
		analysis.NewSuccessAnalyzerConstructor(flags.Window),
		analysis.NewMultiComparatorConstructor(successCmp...),
	)
	cmp.AddAnalysis(
		"usage",
		analysis.NewUsageAnalyzerConstructor(0.1),
		analysis.NewJSONComparatorConstructor(flags.SavePath, "usage", logger),
	)
	if flags.RecordTraces {
		cmp.AddAnalysis(
			"trace",
			analysis.NewTraceAnalyzerConstructor(flags.SavePath),
			analysis.NewErrorComparatorConstructor(logger),
		)
	}
	return cmp, nil
}

func writeSummary(w io.Writer, cmp *core.ParallelComparison, results map[string][]*core.Result) error {
	if _, err := fmt.Fprintf(w, "%-20s %6s %12s %12s\n", "Mode", "Runs", "Mean rate", "Best rate"); err != nil {
		return err
	}
	for _, e := range cmp.Experiments {
		runs := results[e.Name]
		total, best := float64(0), float64(0)
		for _, r := range runs {
			total += r.SuccessRate
			best = max(best, r.SuccessRate)
		}
		mean := float64(0)
		if len(runs) > 0 {
			mean = total / float64(len(runs))
		}
		if _, err := fmt.Fprintf(w, "%-20s %6d %12.4f %12.4f\n", e.Name, len(runs), mean, best); err != nil {
			return err
		}
	}
	return nil
}
