package core

import (
	"io"
	"log/slog"
	"math"
)

// Game fixes the label domains of a signaling game.
type Game struct {
	States  int
	Signals int
	Punish  PunishRule
	// MinWeight is the floor of every urn weight; 0 means DefaultMinWeight.
	MinWeight float64
}

func (g Game) Validate() error {
	if g.States < 1 {
		return configError("number of states must be at least 1, got %d", g.States)
	}
	if g.Signals < 1 {
		return configError("number of signals must be at least 1, got %d", g.Signals)
	}
	if math.IsNaN(g.MinWeight) || g.MinWeight < 0 || g.MinWeight > InitialWeight {
		return configError("minimum weight must be in (0, %v], got %v", InitialWeight, g.MinWeight)
	}
	return nil
}

func (g Game) learnerOptions() []Option {
	opts := []Option{WithPunishRule(g.Punish)}
	if g.MinWeight != 0 {
		opts = append(opts, WithMinWeight(g.MinWeight))
	}
	return opts
}

// NewLearners builds a fresh Sender and Receiver with unit weights.
func (g Game) NewLearners() (*Sender, *Receiver, error) {
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}
	states := Labels[State](g.States)
	signals := Labels[Signal](g.Signals)
	sender, err := NewSender(states, signals, g.learnerOptions()...)
	if err != nil {
		return nil, nil, err
	}
	receiver, err := NewReceiver(signals, states, g.learnerOptions()...)
	if err != nil {
		return nil, nil, err
	}
	return sender, receiver, nil
}

type DataSet interface{}

// Analyzer observes every round of a run.
type Analyzer interface {
	Analyze(*RoundContext, *Round)
	DataSet() DataSet
	Reset()
}

// Finisher is implemented by analyzers that act once a run ends, whether
// it completed, aborted on an error or was cancelled.
type Finisher interface {
	Finish(*RunContext)
}

type AnalyzerConstructor interface {
	// new analyzer based on experiment name and run
	NewAnalyzer(string, int) Analyzer
}

type Comparator interface {
	Compare([]string, []DataSet)
}

type ComparatorConstructor interface {
	NewComparator(int) Comparator
}

type RunConfig struct {
	Rounds int
	Seed   uint64
	Run    int

	// ProgressEvery writes a progress line to Writer every that many rounds; 0 disables it.
	ProgressEvery int
	// RecordTrace appends every round to the run's Trace.
	RecordTrace bool

	Writer io.Writer
	Logger *slog.Logger
}

// Simulation owns exactly one Sender and one Receiver for a run.
type Simulation struct {
	Name        string
	Environment Environment
	Strategy    Strategy
	Sender      *Sender
	Receiver    *Receiver
}

func NewSimulation(name string, game Game, env Environment, strategy Strategy) (*Simulation, error) {
	sender, receiver, err := game.NewLearners()
	if err != nil {
		return nil, err
	}
	return &Simulation{
		Name:        name,
		Environment: env,
		Strategy:    strategy,
		Sender:      sender,
		Receiver:    receiver,
	}, nil
}

type ParallelExperiment struct {
	Name     string
	Strategy StrategyConstructor
}

type ParallelComparison struct {
	Game        Game
	Environment Environment
	Experiments []*ParallelExperiment
	Analyzers   map[string]AnalyzerConstructor
	Comparators map[string]ComparatorConstructor

	// Output receives the live progress lines; os.Stdout when nil.
	Output io.Writer
}

func NewParallelComparison(game Game, env Environment) *ParallelComparison {
	return &ParallelComparison{
		Game:        game,
		Environment: env,
		Analyzers:   make(map[string]AnalyzerConstructor),
		Comparators: make(map[string]ComparatorConstructor),
		Experiments: make([]*ParallelExperiment, 0),
	}
}

func (c *ParallelComparison) AddExperiment(e *ParallelExperiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *ParallelComparison) AddAnalysis(name string, a AnalyzerConstructor, cmp ComparatorConstructor) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}
