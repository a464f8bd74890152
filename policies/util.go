package policies

import (
	"fmt"
	"strings"

	"github.com/zeu5/lewis-signaling/core"
)

// Mode names a learning regime.
type Mode string

const (
	ModePositive         Mode = "positive"
	ModePositiveNegative Mode = "positive_negative"
	ModeRandomized       Mode = "randomized"
)

// Perturbation bounds used by the randomized mode.
const (
	DefaultPerturbLow  = 0.8
	DefaultPerturbHigh = 1.2
)

func Modes() []Mode {
	return []Mode{ModePositive, ModePositiveNegative, ModeRandomized}
}

// ParseMode validates a learning mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	names := make([]string, 0, len(Modes()))
	for _, m := range Modes() {
		names = append(names, string(m))
	}
	return "", fmt.Errorf("%w: unknown learning mode %q, supported: %s", core.ErrConfiguration, s, strings.Join(names, ", "))
}

// NewStrategyConstructor returns the constructor for mode. The randomized
// mode perturbs with [DefaultPerturbLow, DefaultPerturbHigh].
func NewStrategyConstructor(mode Mode) (core.StrategyConstructor, error) {
	switch mode {
	case ModePositive:
		return &PositiveStrategyConstructor{}, nil
	case ModePositiveNegative:
		return &PositiveNegativeStrategyConstructor{}, nil
	case ModeRandomized:
		return NewRandomPerturbationStrategyConstructor(DefaultPerturbLow, DefaultPerturbHigh)
	default:
		_, err := ParseMode(string(mode))
		return nil, err
	}
}

func NewStrategy(mode Mode) (core.Strategy, error) {
	c, err := NewStrategyConstructor(mode)
	if err != nil {
		return nil, err
	}
	return c.NewStrategy(), nil
}

// playRound takes a round through signal and act and evaluates it.
// It does not touch any weights.
func playRound(rCtx *core.RoundContext, state core.State, sender *core.Sender, receiver *core.Receiver) (*core.Round, error) {
	signal, err := sender.Signal(rCtx.Source, state)
	if err != nil {
		return nil, err
	}
	act, err := receiver.Act(rCtx.Source, signal)
	if err != nil {
		return nil, err
	}
	return &core.Round{
		Index:   rCtx.Round,
		State:   state,
		Signal:  signal,
		Act:     act,
		Success: act == state,
	}, nil
}

// reinforce rewards the sender's state urn for the signal and the
// receiver's signal urn for the state.
func reinforce(round *core.Round, sender *core.Sender, receiver *core.Receiver) error {
	if err := sender.Reinforce(round.State, round.Signal, core.Unit); err != nil {
		return err
	}
	return receiver.Reinforce(round.Signal, round.State, core.Unit)
}

func punish(round *core.Round, sender *core.Sender, receiver *core.Receiver) error {
	if err := sender.Punish(round.State, round.Signal); err != nil {
		return err
	}
	return receiver.Punish(round.Signal, round.State)
}
