package policies

import "github.com/zeu5/lewis-signaling/core"

// PositiveNegativeStrategy reinforces on success like PositiveStrategy
// and punishes the same urn entries on failure. What punishment does to
// a weight is decided by the learners' core.PunishRule.
type PositiveNegativeStrategy struct{}

var _ core.Strategy = &PositiveNegativeStrategy{}

func NewPositiveNegativeStrategy() *PositiveNegativeStrategy {
	return &PositiveNegativeStrategy{}
}

func (p *PositiveNegativeStrategy) Name() string {
	return string(ModePositiveNegative)
}

func (p *PositiveNegativeStrategy) Apply(rCtx *core.RoundContext, state core.State, sender *core.Sender, receiver *core.Receiver) (*core.Round, error) {
	round, err := playRound(rCtx, state, sender, receiver)
	if err != nil {
		return nil, err
	}
	if round.Success {
		err = reinforce(round, sender, receiver)
	} else {
		err = punish(round, sender, receiver)
	}
	if err != nil {
		return nil, err
	}
	return round, nil
}

type PositiveNegativeStrategyConstructor struct{}

var _ core.StrategyConstructor = &PositiveNegativeStrategyConstructor{}

func (p *PositiveNegativeStrategyConstructor) NewStrategy() core.Strategy {
	return NewPositiveNegativeStrategy()
}
