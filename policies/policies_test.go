package policies

import (
	"context"
	"errors"
	"testing"

	"github.com/zeu5/lewis-signaling/analysis"
	"github.com/zeu5/lewis-signaling/core"
	erand "golang.org/x/exp/rand"
)

func newLearners(t *testing.T, states, signals int, rule core.PunishRule) (*core.Sender, *core.Receiver) {
	t.Helper()
	sender, receiver, err := core.Game{States: states, Signals: signals, Punish: rule}.NewLearners()
	if err != nil {
		t.Fatalf("NewLearners: %v", err)
	}
	return sender, receiver
}

func roundContext(seed uint64) *core.RoundContext {
	return &core.RoundContext{
		Round: 0,
		RunContext: &core.RunContext{
			Context: context.Background(),
			Rounds:  1,
			Source:  erand.NewSource(seed),
		},
	}
}

// punished is the weight expected after one punishment under rule.
func punished(w float64, rule core.PunishRule) float64 {
	if w <= core.Unit {
		return w
	}
	if rule == core.PunishDecay {
		return w - core.Unit
	}
	return w + core.Unit
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	for _, bad := range []string{"", "negative", "Positive"} {
		if _, err := ParseMode(bad); !errors.Is(err, core.ErrConfiguration) {
			t.Errorf("ParseMode(%q): expected ErrConfiguration, got %v", bad, err)
		}
		if _, err := NewStrategy(Mode(bad)); !errors.Is(err, core.ErrConfiguration) {
			t.Errorf("NewStrategy(%q): expected ErrConfiguration, got %v", bad, err)
		}
	}
}

func TestStrategyNames(t *testing.T) {
	for _, m := range Modes() {
		s, err := NewStrategy(m)
		if err != nil {
			t.Fatalf("NewStrategy(%q): %v", m, err)
		}
		if s.Name() != string(m) {
			t.Errorf("expected name %q, got %q", m, s.Name())
		}
	}
}

func TestPositiveStrategy(t *testing.T) {
	sawExactScenario := false
	successes, failures := 0, 0
	for seed := uint64(1); seed <= 200; seed++ {
		sender, receiver := newLearners(t, 2, 2, core.PunishInverted)
		round, err := NewPositiveStrategy().Apply(roundContext(seed), 0, sender, receiver)
		if err != nil {
			t.Fatalf("seed %d: Apply: %v", seed, err)
		}
		if round.State != 0 || round.Success != (round.Act == round.State) {
			t.Fatalf("seed %d: inconsistent round %+v", seed, round)
		}

		for _, st := range sender.Keys() {
			for _, sg := range sender.Outcomes() {
				want := 1.0
				if round.Success && st == round.State && sg == round.Signal {
					want = 2
				}
				if got, _ := sender.Weight(st, sg); got != want {
					t.Errorf("seed %d: sender[%d][%d] = %v, want %v", seed, st, sg, got, want)
				}
				wantR := 1.0
				if round.Success && sg == round.Signal && st == round.State {
					wantR = 2
				}
				if got, _ := receiver.Weight(sg, st); got != wantR {
					t.Errorf("seed %d: receiver[%d][%d] = %v, want %v", seed, sg, st, got, wantR)
				}
			}
		}

		if round.Success {
			successes++
		} else {
			failures++
		}
		if round.Signal == 0 && round.Act == 0 {
			sawExactScenario = true
			s, _ := sender.Weight(0, 0)
			r, _ := receiver.Weight(0, 0)
			if s != 2 || r != 2 {
				t.Errorf("seed %d: signal 0 act 0 should reinforce both to 2, got %v and %v", seed, s, r)
			}
		}
	}
	if successes == 0 || failures == 0 || !sawExactScenario {
		t.Errorf("seeds did not cover both outcomes: %d successes, %d failures", successes, failures)
	}
}

func TestPositiveNegativeStrategy(t *testing.T) {
	for _, rule := range []core.PunishRule{core.PunishInverted, core.PunishDecay} {
		t.Run(rule.String(), func(t *testing.T) {
			sawRaisedFailure := false
			for seed := uint64(1); seed <= 300; seed++ {
				sender, receiver := newLearners(t, 2, 2, rule)
				// raise the failing pair above one unit so punishment has an effect
				if err := sender.Reinforce(0, 1, core.Unit); err != nil {
					t.Fatal(err)
				}
				if err := receiver.Reinforce(1, 0, core.Unit); err != nil {
					t.Fatal(err)
				}
				wantS := sender.Snapshot()
				wantR := receiver.Snapshot()

				round, err := NewPositiveNegativeStrategy().Apply(roundContext(seed), 0, sender, receiver)
				if err != nil {
					t.Fatalf("seed %d: Apply: %v", seed, err)
				}
				if round.Success {
					wantS[round.State][round.Signal] += core.Unit
					wantR[round.Signal][round.State] += core.Unit
				} else {
					wantS[round.State][round.Signal] = punished(wantS[round.State][round.Signal], rule)
					wantR[round.Signal][round.State] = punished(wantR[round.Signal][round.State], rule)
				}
				for st, urn := range sender.Snapshot() {
					for sg, w := range urn {
						if w != wantS[st][sg] {
							t.Errorf("seed %d round %+v: sender[%d][%d] = %v, want %v", seed, round, st, sg, w, wantS[st][sg])
						}
					}
				}
				for sg, urn := range receiver.Snapshot() {
					for st, w := range urn {
						if w != wantR[sg][st] {
							t.Errorf("seed %d round %+v: receiver[%d][%d] = %v, want %v", seed, round, sg, st, w, wantR[sg][st])
						}
					}
				}

				if !round.Success && round.Signal == 1 && round.Act == 1 {
					sawRaisedFailure = true
					want := 3.0
					if rule == core.PunishDecay {
						want = 1
					}
					if w, _ := sender.Weight(0, 1); w != want {
						t.Errorf("seed %d: sender[0][1] = %v, want %v", seed, w, want)
					}
				}
			}
			if !sawRaisedFailure {
				t.Errorf("no seed produced a failure on the raised pair")
			}
		})
	}
}

func TestPositiveNegativeLeavesUnitWeights(t *testing.T) {
	for seed := uint64(1); seed <= 100; seed++ {
		sender, receiver := newLearners(t, 2, 2, core.PunishDecay)
		round, err := NewPositiveNegativeStrategy().Apply(roundContext(seed), 1, sender, receiver)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if round.Success {
			continue
		}
		for _, urn := range sender.Snapshot() {
			for _, w := range urn {
				if w != 1 {
					t.Fatalf("seed %d: failure changed a unit weight to %v", seed, w)
				}
			}
		}
	}
}

func TestRandomPerturbationStrategy(t *testing.T) {
	low, high := DefaultPerturbLow, DefaultPerturbHigh
	strategy, err := NewRandomPerturbationStrategy(low, high)
	if err != nil {
		t.Fatalf("NewRandomPerturbationStrategy: %v", err)
	}
	for seed := uint64(1); seed <= 50; seed++ {
		sender, receiver := newLearners(t, 2, 3, core.PunishInverted)
		beforeS := sender.Snapshot()
		beforeR := receiver.Snapshot()

		round, err := strategy.Apply(roundContext(seed), 1, sender, receiver)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if round.Success {
			beforeS[round.State][round.Signal] += core.Unit
			beforeR[round.Signal][round.State] += core.Unit
		}
		for st, urn := range sender.Snapshot() {
			for sg, w := range urn {
				if w < beforeS[st][sg]*low || w > beforeS[st][sg]*high {
					t.Errorf("seed %d: sender[%d][%d] = %v outside perturbation of %v", seed, st, sg, w, beforeS[st][sg])
				}
			}
		}
		for sg, urn := range receiver.Snapshot() {
			for st, w := range urn {
				if w < beforeR[sg][st]*low || w > beforeR[sg][st]*high {
					t.Errorf("seed %d: receiver[%d][%d] = %v outside perturbation of %v", seed, sg, st, w, beforeR[sg][st])
				}
			}
		}
	}
}

func TestRandomPerturbationKeepsWeightsPositive(t *testing.T) {
	tests := []struct {
		name            string
		states, signals int
		low, high       float64
		rounds          int
		seed            uint64
	}{
		{"shrinking interval", 3, 3, 0.5, 1.1, 2000, 8},
		{"long run with wide interval", 2, 2, 0.4, 1.2, 20000, 1},
		{"long run with default interval", 2, 2, 0.8, 1.2, 20000, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, receiver := newLearners(t, tt.states, tt.signals, core.PunishInverted)
			strategy, err := NewRandomPerturbationStrategy(tt.low, tt.high)
			if err != nil {
				t.Fatal(err)
			}
			rCtx := roundContext(tt.seed)
			for i := 0; i < tt.rounds; i++ {
				rCtx.Round = i
				if _, err := strategy.Apply(rCtx, core.State(i%tt.states), sender, receiver); err != nil {
					t.Fatalf("round %d: %v", i, err)
				}
			}
			for _, urn := range sender.Snapshot() {
				for _, w := range urn {
					if w < core.DefaultMinWeight {
						t.Fatalf("sender weight dropped to %v", w)
					}
				}
			}
			for _, urn := range receiver.Snapshot() {
				for _, w := range urn {
					if w < core.DefaultMinWeight {
						t.Fatalf("receiver weight dropped to %v", w)
					}
				}
			}
		})
	}
}

func TestRandomPerturbationInterval(t *testing.T) {
	tests := []struct {
		name      string
		low, high float64
		wantErr   bool
	}{
		{"default", 0.8, 1.2, false},
		{"degenerate", 1, 1, false},
		{"zero low", 0, 1.2, true},
		{"negative low", -0.2, 1.2, true},
		{"inverted", 1.2, 0.8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewRandomPerturbationStrategy(tt.low, tt.high)
			if tt.wantErr {
				if !errors.Is(err, core.ErrConfiguration) {
					t.Errorf("expected ErrConfiguration, got %v", err)
				}
				if _, err := NewRandomPerturbationStrategyConstructor(tt.low, tt.high); !errors.Is(err, core.ErrConfiguration) {
					t.Errorf("constructor: expected ErrConfiguration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l, h := s.Interval(); l != tt.low || h != tt.high {
				t.Errorf("interval = [%v, %v]", l, h)
			}
		})
	}
}

func TestSingleStateSingleSignal(t *testing.T) {
	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			strategy, err := NewStrategy(mode)
			if err != nil {
				t.Fatal(err)
			}
			sender, receiver := newLearners(t, 1, 1, core.PunishInverted)
			rCtx := roundContext(1)
			for i := 0; i < 20; i++ {
				rCtx.Round = i
				round, err := strategy.Apply(rCtx, 0, sender, receiver)
				if err != nil {
					t.Fatalf("round %d: %v", i, err)
				}
				if !round.Success {
					t.Fatalf("round %d: a one-state game cannot fail", i)
				}
			}
			if mode == ModeRandomized {
				return
			}
			if w, _ := sender.Weight(0, 0); w != 21 {
				t.Errorf("expected sender weight 21 after 20 successes, got %v", w)
			}
		})
	}
}

// finalWindowRate runs a 2x2 game and returns the success rate over the
// last window rounds.
func finalWindowRate(t *testing.T, mode Mode, rule core.PunishRule, seed uint64, rounds, window int) float64 {
	t.Helper()
	game := core.Game{States: 2, Signals: 2, Punish: rule}
	env, err := core.NewUniformEnvironment(core.Labels[core.State](2))
	if err != nil {
		t.Fatal(err)
	}
	strategy, err := NewStrategy(mode)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := core.NewSimulation(string(mode), game, env, strategy)
	if err != nil {
		t.Fatal(err)
	}
	success := analysis.NewSuccessAnalyzer(window)
	_, err = sim.Run(context.Background(), &core.RunConfig{Rounds: rounds, Seed: seed}, map[string]core.Analyzer{"success": success})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ds := success.DataSet().(*analysis.SuccessDataset)
	return ds.Windowed[len(ds.Windowed)-1]
}

func TestConvergence(t *testing.T) {
	if testing.Short() {
		t.Skip("long running")
	}
	tests := []struct {
		name string
		mode Mode
		rule core.PunishRule
	}{
		{"positive", ModePositive, core.PunishInverted},
		{"positive_negative decay", ModePositiveNegative, core.PunishDecay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const seeds = 10
			total := 0.0
			for seed := uint64(1); seed <= seeds; seed++ {
				total += finalWindowRate(t, tt.mode, tt.rule, seed, 5000, 1000)
			}
			if mean := total / seeds; mean <= 0.9 {
				t.Errorf("mean final success rate %.4f, expected above 0.9", mean)
			}
		})
	}
}
