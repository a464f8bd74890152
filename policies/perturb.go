package policies

import "github.com/zeu5/lewis-signaling/core"

// RandomPerturbationStrategy plays a PositiveStrategy round and then
// multiplies every weight of both learners by an independent uniform
// factor from [low, high], whatever the outcome.
type RandomPerturbationStrategy struct {
	*PositiveStrategy
	low  float64
	high float64
}

var _ core.Strategy = &RandomPerturbationStrategy{}

// NewRandomPerturbationStrategy fails with core.ErrConfiguration unless 0 < low <= high.
func NewRandomPerturbationStrategy(low, high float64) (*RandomPerturbationStrategy, error) {
	if err := core.ValidateInterval(low, high); err != nil {
		return nil, err
	}
	return &RandomPerturbationStrategy{
		PositiveStrategy: NewPositiveStrategy(),
		low:              low,
		high:             high,
	}, nil
}

func (r *RandomPerturbationStrategy) Name() string {
	return string(ModeRandomized)
}

func (r *RandomPerturbationStrategy) Interval() (float64, float64) {
	return r.low, r.high
}

func (r *RandomPerturbationStrategy) Apply(rCtx *core.RoundContext, state core.State, sender *core.Sender, receiver *core.Receiver) (*core.Round, error) {
	round, err := r.PositiveStrategy.Apply(rCtx, state, sender, receiver)
	if err != nil {
		return nil, err
	}
	if err := sender.Perturb(rCtx.Source, r.low, r.high); err != nil {
		return nil, err
	}
	if err := receiver.Perturb(rCtx.Source, r.low, r.high); err != nil {
		return nil, err
	}
	return round, nil
}

type RandomPerturbationStrategyConstructor struct {
	low  float64
	high float64
}

var _ core.StrategyConstructor = &RandomPerturbationStrategyConstructor{}

func NewRandomPerturbationStrategyConstructor(low, high float64) (*RandomPerturbationStrategyConstructor, error) {
	if err := core.ValidateInterval(low, high); err != nil {
		return nil, err
	}
	return &RandomPerturbationStrategyConstructor{low: low, high: high}, nil
}

func (r *RandomPerturbationStrategyConstructor) NewStrategy() core.Strategy {
	s, _ := NewRandomPerturbationStrategy(r.low, r.high)
	return s
}
