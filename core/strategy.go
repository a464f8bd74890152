package core

// Strategy plays one full round: the Sender signals, the Receiver acts,
// and both learners are updated according to the outcome.
type Strategy interface {
	Name() string
	Apply(*RoundContext, State, *Sender, *Receiver) (*Round, error)
}

type StrategyConstructor interface {
	NewStrategy() Strategy
}
