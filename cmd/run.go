package cmd

import (
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/lewis-signaling/analysis"
	"github.com/zeu5/lewis-signaling/core"
	"github.com/zeu5/lewis-signaling/policies"
	"github.com/zeu5/lewis-signaling/report"
	"github.com/zeu5/lewis-signaling/util"
)

func RunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and report the final urns",
		RunE: func(cmd *cobra.Command, args []string) error {
			learningMode, err := flags.LearningMode()
			if err != nil {
				return err
			}
			strategy, err := policies.NewStrategy(learningMode)
			if err != nil {
				return err
			}
			env, err := flags.Environment()
			if err != nil {
				return err
			}
			sim, err := core.NewSimulation(string(learningMode), flags.Game(), env, strategy)
			if err != nil {
				return err
			}
			flags.ResolveSeed()
			if err := flags.Record(); err != nil {
				logger.Warn("recording config", "error", err)
			}

			success := analysis.NewSuccessAnalyzer(flags.Window)
			analyzers := map[string]core.Analyzer{"success": success}
			if flags.RecordTraces {
				analyzers["trace"] = analysis.NewTraceAnalyzer(flags.SavePath, sim.Name, 0)
			}

			ctx, cancel := interruptContext(cmd.Context())
			defer cancel()

			cfg := &core.RunConfig{
				Rounds:        flags.Rounds,
				Seed:          flags.Seed,
				ProgressEvery: flags.ProgressEvery,
				RecordTrace:   flags.RecordTraces,
				Logger:        logger,
			}
			out, isTerm := terminal(cmd)
			var printer *util.TerminalPrinter
			if isTerm && !flags.JSON && flags.ProgressEvery > 0 {
				printer = util.NewTerminalPrinter(out, 200*time.Millisecond)
				cfg.Writer = printer.NewOutput()
				printer.Start(ctx)
			}
			result, runErr := sim.Run(ctx, cfg, analyzers)
			if printer != nil {
				printer.Stop()
			}
			if result != nil {
				if err, ok := result.Datasets["trace"].(error); ok && err != nil {
					logger.Warn("saving trace", "error", err)
				}
			}
			if runErr != nil {
				return runErr
			}

			if flags.Chart {
				if err := saveChart(sim.Name, result); err != nil {
					logger.Warn("saving chart", "error", err)
				}
			}
			if flags.JSON {
				return report.JSON(cmd.OutOrStdout(), result)
			}
			return report.Write(cmd.OutOrStdout(), result, report.Options{Color: isTerm})
		},
	}
}

func saveChart(name string, result *core.Result) error {
	if err := os.MkdirAll(flags.SavePath, 0755); err != nil {
		return err
	}
	f, err := os.Create(path.Join(flags.SavePath, "success.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return analysis.RenderSuccessChart(f, "", []string{name}, []core.DataSet{result.Datasets["success"]})
}
