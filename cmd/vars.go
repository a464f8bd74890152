package cmd

import (
	"log/slog"

	"github.com/spf13/pflag"
	"github.com/zeu5/lewis-signaling/common"
	"github.com/zeu5/lewis-signaling/util"
)

var (
	flags  *common.Flags = common.DefaultFlags()
	logger *slog.Logger  = util.DiscardLogger()

	configPath   string
	savePath     string
	logLevel     string
	jsonOut      bool
	chart        bool
	recordTraces bool

	states       int
	signals      int
	mode         string
	punish       string
	minWeight    float64
	stateWeights []float64

	rounds        int
	seed          uint64
	numRuns       int
	parallelism   int
	window        int
	progressEvery int
)

func AddFlags(fs *pflag.FlagSet) {
	defaults := common.DefaultFlags()
	fs.StringVar(&configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&savePath, "save-path", defaults.SavePath, "Path to save results")
	fs.StringVar(&logLevel, "log-level", defaults.LogLevel, "Log level: info, debug or trace")
	fs.BoolVar(&jsonOut, "json", defaults.JSON, "Output as JSON")
	fs.BoolVar(&chart, "chart", defaults.Chart, "Render success curves to an HTML chart under the save path")
	fs.BoolVar(&recordTraces, "record-traces", defaults.RecordTraces, "Save every round as JSON lines under the save path")

	fs.IntVar(&states, "states", defaults.States, "Number of states")
	fs.IntVar(&signals, "signals", defaults.Signals, "Number of signals")
	fs.StringVar(&mode, "mode", defaults.Mode, "Learning mode: positive, positive_negative or randomized")
	fs.StringVar(&punish, "punish", defaults.Punish, "Punish rule for positive_negative: inverted or decay")
	fs.Float64Var(&minWeight, "min-weight", defaults.MinWeight, "Floor no urn weight is pushed below")
	fs.Float64SliceVar(&stateWeights, "state-weights", defaults.StateWeights, "Prior weight of each state (uniform when empty)")

	fs.IntVar(&rounds, "rounds", defaults.Rounds, "Number of rounds per run")
	fs.Uint64Var(&seed, "seed", defaults.Seed, "Random seed, 0 for a time based seed")
	fs.IntVar(&numRuns, "num-runs", defaults.NumRuns, "Number of runs")
	fs.IntVar(&parallelism, "parallelism", defaults.Parallelism, "Number of parallel runs")
	fs.IntVar(&window, "window", defaults.Window, "Rounds per success rate sample")
	fs.IntVar(&progressEvery, "progress-every", defaults.ProgressEvery, "Rounds between progress updates, 0 to disable")
}

// UpdateFlags copies the flags set on the command line over the loaded config.
func UpdateFlags(fs *pflag.FlagSet) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("save-path", func() { flags.SavePath = savePath })
	set("log-level", func() { flags.LogLevel = logLevel })
	set("json", func() { flags.JSON = jsonOut })
	set("chart", func() { flags.Chart = chart })
	set("record-traces", func() { flags.RecordTraces = recordTraces })

	set("states", func() { flags.States = states })
	set("signals", func() { flags.Signals = signals })
	set("mode", func() { flags.Mode = mode })
	set("punish", func() { flags.Punish = punish })
	set("min-weight", func() { flags.MinWeight = minWeight })
	set("state-weights", func() { flags.StateWeights = stateWeights })

	set("rounds", func() { flags.Rounds = rounds })
	set("seed", func() { flags.Seed = seed })
	set("num-runs", func() { flags.NumRuns = numRuns })
	set("parallelism", func() { flags.Parallelism = parallelism })
	set("window", func() { flags.Window = window })
	set("progress-every", func() { flags.ProgressEvery = progressEvery })
}
