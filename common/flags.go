// Package common holds the run configuration shared by every command.
// Values are layered: DefaultFlags, then an optional YAML file, then
// LEWIS_* environment variables, then flags set on the command line.
package common

import (
	"fmt"
	"math"
	"os"
	"path"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/zeu5/lewis-signaling/core"
	"github.com/zeu5/lewis-signaling/policies"
	"github.com/zeu5/lewis-signaling/util"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "LEWIS_"

type Flags struct {
	GameFlags `yaml:"game" json:"game"`
	RunFlags  `yaml:"run" json:"run"`

	SavePath     string `yaml:"save_path" json:"save_path" env:"SAVE_PATH"`
	LogLevel     string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`
	JSON         bool   `yaml:"json" json:"json" env:"JSON"`
	Chart        bool   `yaml:"chart" json:"chart" env:"CHART"`
	RecordTraces bool   `yaml:"record_traces" json:"record_traces" env:"RECORD_TRACES"`
}

type GameFlags struct {
	States       int       `yaml:"states" json:"states" env:"STATES"`
	Signals      int       `yaml:"signals" json:"signals" env:"SIGNALS"`
	Mode         string    `yaml:"mode" json:"mode" env:"MODE"`
	Punish       string    `yaml:"punish" json:"punish" env:"PUNISH"`
	MinWeight    float64   `yaml:"min_weight" json:"min_weight" env:"MIN_WEIGHT"`
	StateWeights []float64 `yaml:"state_weights,omitempty" json:"state_weights,omitempty" env:"STATE_WEIGHTS"`
}

type RunFlags struct {
	Rounds int `yaml:"rounds" json:"rounds" env:"ROUNDS"`
	// Seed 0 picks a time based seed.
	Seed          uint64 `yaml:"seed" json:"seed" env:"SEED"`
	NumRuns       int    `yaml:"num_runs" json:"num_runs" env:"NUM_RUNS"`
	Parallelism   int    `yaml:"parallelism" json:"parallelism" env:"PARALLELISM"`
	Window        int    `yaml:"window" json:"window" env:"WINDOW"`
	ProgressEvery int    `yaml:"progress_every" json:"progress_every" env:"PROGRESS_EVERY"`
}

func DefaultFlags() *Flags {
	return &Flags{
		GameFlags: GameFlags{
			States:    2,
			Signals:   2,
			Mode:      string(policies.ModePositive),
			Punish:    core.PunishInverted.String(),
			MinWeight: core.DefaultMinWeight,
		},
		RunFlags: RunFlags{
			Rounds:        1000,
			Seed:          0,
			NumRuns:       1,
			Parallelism:   3,
			Window:        100,
			ProgressEvery: 100,
		},
		SavePath:     "results",
		LogLevel:     "info",
		JSON:         false,
		Chart:        false,
		RecordTraces: false,
	}
}

// Load returns the defaults overridden by the YAML file at configPath
// (when not empty) and then by the environment.
func Load(configPath string) (*Flags, error) {
	flags := DefaultFlags()
	if configPath != "" {
		fileFlags, err := LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		flags = fileFlags
	}
	if err := flags.ApplyEnv(); err != nil {
		return nil, err
	}
	return flags, nil
}

// LoadFromFile reads a YAML config on top of the defaults.
func LoadFromFile(configPath string) (*Flags, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	flags := DefaultFlags()
	if err := yaml.Unmarshal(data, flags); err != nil {
		return nil, fmt.Errorf("%w: parsing config file: %s", core.ErrConfiguration, err)
	}
	return flags, nil
}

// ApplyEnv overrides fields whose LEWIS_* variable is set.
func (f *Flags) ApplyEnv() error {
	if err := env.ParseWithOptions(f, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: parse env: %s", core.ErrConfiguration, err)
	}
	return nil
}

// Validate checks every value before anything is constructed.
func (f *Flags) Validate() error {
	if f.Rounds < 1 {
		return fmt.Errorf("%w: rounds must be positive, got %d", core.ErrConfiguration, f.Rounds)
	}
	if err := f.Game().Validate(); err != nil {
		return err
	}
	if _, err := policies.ParseMode(f.Mode); err != nil {
		return err
	}
	if _, err := core.ParsePunishRule(f.Punish); err != nil {
		return err
	}
	if len(f.StateWeights) > 0 {
		if len(f.StateWeights) != f.States {
			return fmt.Errorf("%w: got %d state weights for %d states", core.ErrConfiguration, len(f.StateWeights), f.States)
		}
		for i, w := range f.StateWeights {
			if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
				return fmt.Errorf("%w: weight of state %d must be positive, got %v", core.ErrConfiguration, i, w)
			}
		}
	}
	if f.NumRuns < 1 {
		return fmt.Errorf("%w: num-runs must be positive, got %d", core.ErrConfiguration, f.NumRuns)
	}
	if f.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be positive, got %d", core.ErrConfiguration, f.Parallelism)
	}
	if f.Window < 1 {
		return fmt.Errorf("%w: window must be positive, got %d", core.ErrConfiguration, f.Window)
	}
	if f.ProgressEvery < 0 {
		return fmt.Errorf("%w: progress-every must not be negative, got %d", core.ErrConfiguration, f.ProgressEvery)
	}
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if f.LogLevel != "" && !validLevels[f.LogLevel] {
		return fmt.Errorf("%w: invalid log level: %s (valid: info, debug, trace)", core.ErrConfiguration, f.LogLevel)
	}
	return nil
}

// Game assumes Validate passed; an unparsable punish rule falls back to inverted.
func (f *Flags) Game() core.Game {
	rule, _ := core.ParsePunishRule(f.Punish)
	return core.Game{
		States:    f.States,
		Signals:   f.Signals,
		Punish:    rule,
		MinWeight: f.MinWeight,
	}
}

func (f *Flags) LearningMode() (policies.Mode, error) {
	return policies.ParseMode(f.Mode)
}

// Environment is uniform unless state weights are configured.
func (f *Flags) Environment() (core.Environment, error) {
	states := core.Labels[core.State](f.States)
	if len(f.StateWeights) > 0 {
		return core.NewWeightedEnvironment(states, f.StateWeights)
	}
	return core.NewUniformEnvironment(states)
}

// ResolveSeed replaces a zero seed with a time based one, so the seed
// recorded alongside the results can reproduce the run.
func (f *Flags) ResolveSeed() uint64 {
	if f.Seed == 0 {
		f.Seed = uint64(time.Now().UnixNano())
	}
	return f.Seed
}

func (f *Flags) Record() error {
	return util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}
