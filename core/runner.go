package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gosuri/uilive"
	"github.com/zeu5/lewis-signaling/util"
	erand "golang.org/x/exp/rand"
)

type Result struct {
	Experiment  string                       `json:"experiment"`
	Run         int                          `json:"run"`
	Seed        uint64                       `json:"seed"`
	Rounds      int                          `json:"rounds"`
	Successes   int                          `json:"successes"`
	SuccessRate float64                      `json:"success_rate"`
	Sender      map[State]map[Signal]float64 `json:"sender"`
	Receiver    map[Signal]map[State]float64 `json:"receiver"`

	Trace    *Trace             `json:"-"`
	Datasets map[string]DataSet `json:"-"`
	Error    error              `json:"-"`
}

func (r *Result) IsError() bool {
	return r.Error != nil
}

// Run plays cfg.Rounds rounds. Every random draw of the run comes from a
// single source seeded with cfg.Seed. The first error aborts the run; the
// partial result is returned along with it.
func (s *Simulation) Run(ctx context.Context, cfg *RunConfig, analyzers map[string]Analyzer) (*Result, error) {
	if cfg.Rounds <= 0 {
		return nil, configError("number of rounds must be positive, got %d", cfg.Rounds)
	}
	writer := cfg.Writer
	if writer == nil {
		writer = io.Discard
	}
	logger := cfg.Logger
	if logger == nil {
		logger = util.DiscardLogger()
	}
	logger = logger.With("experiment", s.Name, "run", cfg.Run)

	rCtx := &RunContext{
		Context:    ctx,
		Experiment: s.Name,
		Run:        cfg.Run,
		Rounds:     cfg.Rounds,
		Source:     erand.NewSource(cfg.Seed),
		Trace:      NewTrace(),
	}
	result := &Result{
		Experiment: s.Name,
		Run:        cfg.Run,
		Seed:       cfg.Seed,
		Trace:      rCtx.Trace,
		Datasets:   make(map[string]DataSet),
	}
	for _, a := range analyzers {
		a.Reset()
	}

	logger.Info("run started", "strategy", s.Strategy.Name(), "rounds", cfg.Rounds, "seed", cfg.Seed)
RoundLoop:
	for round := 0; round < cfg.Rounds; round++ {
		select {
		case <-ctx.Done():
			result.Error = ErrCancelled
			break RoundLoop
		default:
		}

		state := s.Environment.Draw(rCtx.Source)
		sCtx := &RoundContext{Round: round, RunContext: rCtx}
		r, err := s.Strategy.Apply(sCtx, state, s.Sender, s.Receiver)
		if err != nil {
			result.Error = fmt.Errorf("round %d: %w", round, err)
			break RoundLoop
		}

		result.Rounds++
		if r.Success {
			result.Successes++
		}
		if cfg.RecordTrace {
			rCtx.Trace.AddRound(r)
		}
		for _, a := range analyzers {
			a.Analyze(sCtx, r)
		}
		logger.Log(ctx, util.LevelTrace, "round", "round", round, "state", r.State, "signal", r.Signal, "act", r.Act, "success", r.Success)

		if cfg.ProgressEvery > 0 && (round+1)%cfg.ProgressEvery == 0 {
			rate := float64(result.Successes) / float64(result.Rounds)
			fmt.Fprintf(
				writer,
				"Experiment: %s, Run %d, Rounds: %d/%d, Successes: %d, Success rate: %.4f\n",
				s.Name, cfg.Run, result.Rounds, cfg.Rounds, result.Successes, rate,
			)
			logger.Debug("progress", "rounds", result.Rounds, "success_rate", rate)
		}
	}

	if result.Rounds > 0 {
		result.SuccessRate = float64(result.Successes) / float64(result.Rounds)
	}
	for _, a := range analyzers {
		if f, ok := a.(Finisher); ok {
			f.Finish(rCtx)
		}
	}
	result.Sender = s.Sender.Snapshot()
	result.Receiver = s.Receiver.Snapshot()
	for name, a := range analyzers {
		result.Datasets[name] = a.DataSet()
	}

	if result.Error != nil {
		fmt.Fprintf(writer, "Experiment: %s, Run %d, Error: %v\n", s.Name, cfg.Run, result.Error)
		logger.Error("run aborted", "rounds", result.Rounds, "error", result.Error)
		return result, result.Error
	}
	logger.Info("run finished", "rounds", result.Rounds, "success_rate", result.SuccessRate)
	return result, nil
}

// parallelWorker is a worker that runs experiments
type parallelWorker struct {
	id int
}

// parallelWork is a struct that contains all the information needed to run an experiment
type parallelWork struct {
	experiment *ParallelExperiment
	comp       *ParallelComparison
	writer     io.Writer
	rConfig    RunConfig
}

// parallelResult is a struct that contains the result of running an experiment
type parallelResult struct {
	experimentName string
	result         *Result
}

// Worker main loop that consumes work from a channel
func (w *parallelWorker) run(ctx context.Context, workCh <-chan *parallelWork, resultsCh chan<- *parallelResult) {
	for work := range workCh {
		resultsCh <- w.runWork(ctx, work)
	}
}

// Run an experiment by constructing a fresh simulation for it
func (w *parallelWorker) runWork(ctx context.Context, work *parallelWork) *parallelResult {
	name := work.experiment.Name
	analyzers := make(map[string]Analyzer)
	for aName, aC := range work.comp.Analyzers {
		analyzers[aName] = aC.NewAnalyzer(name, work.rConfig.Run)
	}

	sim, err := NewSimulation(name, work.comp.Game, work.comp.Environment, work.experiment.Strategy.NewStrategy())
	if err != nil {
		return &parallelResult{
			experimentName: name,
			result:         &Result{Experiment: name, Run: work.rConfig.Run, Error: err},
		}
	}

	cfg := work.rConfig
	cfg.Writer = work.writer
	result, _ := sim.Run(ctx, &cfg, analyzers)
	return &parallelResult{
		experimentName: name,
		result:         result,
	}
}

// Run executes every experiment runs times on a pool of parallelism
// workers. Run r is seeded with rConfig.Seed+r for every experiment, so
// modes are compared on the same seeds. Results are returned per
// experiment, indexed by run.
func (c *ParallelComparison) Run(ctx context.Context, runs int, rConfig *RunConfig, parallelism int) map[string][]*Result {
	if parallelism < 1 {
		parallelism = 1
	}
	out := make(map[string][]*Result)
	for _, e := range c.Experiments {
		out[e.Name] = make([]*Result, 0, runs)
	}

	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		writer := uilive.New()
		if c.Output != nil {
			writer.Out = c.Output
		} else {
			writer.Out = os.Stdout
		}
		writer.Start()
		fmt.Fprintf(writer, "Run %d\n", run)

		workCh := make(chan *parallelWork, len(c.Experiments))
		resultsCh := make(chan *parallelResult, len(c.Experiments))

		for i := 0; i < parallelism; i++ {
			w := &parallelWorker{id: i}
			go w.run(ctx, workCh, resultsCh)
		}

		cfg := *rConfig
		cfg.Run = run
		cfg.Seed = rConfig.Seed + uint64(run)
		for _, e := range c.Experiments {
			workCh <- &parallelWork{
				experiment: e,
				comp:       c,
				writer:     writer.Newline(),
				rConfig:    cfg,
			}
		}
		close(workCh)

		results := make(map[string]*Result)
		for range c.Experiments {
			r := <-resultsCh
			results[r.experimentName] = r.result
		}
		writer.Stop()

		for _, e := range c.Experiments {
			out[e.Name] = append(out[e.Name], results[e.Name])
		}
		c.compare(run, results)
	}
	return out
}

// compare gathers the analyzer datasets of one run and hands them to the comparators
func (c *ParallelComparison) compare(run int, results map[string]*Result) {
	experimentNames := make([]string, 0, len(c.Experiments))
	for _, e := range c.Experiments {
		experimentNames = append(experimentNames, e.Name)
	}
	for name, cC := range c.Comparators {
		datasets := make([]DataSet, 0, len(experimentNames))
		for _, exp := range experimentNames {
			result := results[exp]
			if result == nil || result.IsError() {
				datasets = append(datasets, nil)
				continue
			}
			datasets = append(datasets, result.Datasets[name])
		}
		cC.NewComparator(run).Compare(experimentNames, datasets)
	}
}

// LogSummary writes one info line per experiment with the mean success rate over runs.
func LogSummary(logger *slog.Logger, results map[string][]*Result) {
	for name, runs := range results {
		total := float64(0)
		count := 0
		for _, r := range runs {
			if r == nil || r.IsError() {
				continue
			}
			total += r.SuccessRate
			count++
		}
		if count == 0 {
			logger.Warn("no successful runs", "experiment", name)
			continue
		}
		logger.Info("comparison summary", "experiment", name, "runs", count, "mean_success_rate", total/float64(count))
	}
}
