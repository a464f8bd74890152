package policies

import "github.com/zeu5/lewis-signaling/core"

// PositiveStrategy reinforces both learners on success and leaves the
// urns alone on failure.
type PositiveStrategy struct{}

var _ core.Strategy = &PositiveStrategy{}

func NewPositiveStrategy() *PositiveStrategy {
	return &PositiveStrategy{}
}

func (p *PositiveStrategy) Name() string {
	return string(ModePositive)
}

func (p *PositiveStrategy) Apply(rCtx *core.RoundContext, state core.State, sender *core.Sender, receiver *core.Receiver) (*core.Round, error) {
	round, err := playRound(rCtx, state, sender, receiver)
	if err != nil {
		return nil, err
	}
	if round.Success {
		if err := reinforce(round, sender, receiver); err != nil {
			return nil, err
		}
	}
	return round, nil
}

type PositiveStrategyConstructor struct{}

var _ core.StrategyConstructor = &PositiveStrategyConstructor{}

func (p *PositiveStrategyConstructor) NewStrategy() core.Strategy {
	return NewPositiveStrategy()
}
