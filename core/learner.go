package core

import (
	"fmt"

	erand "golang.org/x/exp/rand"
)

// State is a world state observed by the Sender. Acts chosen by the
// Receiver are States as well.
type State int

// Signal is a term the Sender emits and the Receiver interprets.
type Signal int

// Labels returns the labels 0..n-1.
func Labels[T ~int](n int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = T(i)
	}
	return out
}

// Learner is an urn learner: one urn per urn-type key K, drawing
// outcomes of type O.
type Learner[K comparable, O comparable] struct {
	role string
	urns *UrnSet[K, O]
}

// NewLearner builds the urn set for role; its errors carry the role name.
func NewLearner[K comparable, O comparable](role string, keys []K, outcomes []O, opts ...Option) (*Learner[K, O], error) {
	urns, err := NewUrnSet(role, keys, outcomes, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", role, err)
	}
	return &Learner[K, O]{role: role, urns: urns}, nil
}

// Role names the learner in diagnostics.
func (l *Learner[K, O]) Role() string {
	return l.role
}

func (l *Learner[K, O]) Choose(src erand.Source, key K) (O, error) {
	return l.urns.Choose(src, key)
}

func (l *Learner[K, O]) Reinforce(key K, outcome O, amount float64) error {
	return l.urns.Reinforce(key, outcome, amount)
}

func (l *Learner[K, O]) Punish(key K, outcome O) error {
	return l.urns.Punish(key, outcome)
}

func (l *Learner[K, O]) Perturb(src erand.Source, low, high float64) error {
	return l.urns.Perturb(src, low, high)
}

func (l *Learner[K, O]) Probabilities(key K) ([]float64, error) {
	return l.urns.Probabilities(key)
}

// Weight returns the weight of outcome in the urn for key.
func (l *Learner[K, O]) Weight(key K, outcome O) (float64, error) {
	return l.urns.Weight(key, outcome)
}

func (l *Learner[K, O]) Weights(key K) ([]float64, error) {
	return l.urns.Weights(key)
}

// Keys returns the urn-type labels in construction order.
func (l *Learner[K, O]) Keys() []K {
	return l.urns.Keys()
}

// Outcomes returns the outcome labels in construction order.
func (l *Learner[K, O]) Outcomes() []O {
	return l.urns.Outcomes()
}

// Snapshot returns a deep copy of every urn.
func (l *Learner[K, O]) Snapshot() map[K]map[O]float64 {
	return l.urns.Snapshot()
}

// Sender maps states to signals.
type Sender struct {
	*Learner[State, Signal]
}

func NewSender(states []State, signals []Signal, opts ...Option) (*Sender, error) {
	l, err := NewLearner("sender", states, signals, opts...)
	if err != nil {
		return nil, err
	}
	return &Sender{Learner: l}, nil
}

// Signal draws the signal to send for state.
func (s *Sender) Signal(src erand.Source, state State) (Signal, error) {
	return s.Choose(src, state)
}

// Receiver maps signals to acts.
type Receiver struct {
	*Learner[Signal, State]
}

func NewReceiver(signals []Signal, states []State, opts ...Option) (*Receiver, error) {
	l, err := NewLearner("receiver", signals, states, opts...)
	if err != nil {
		return nil, err
	}
	return &Receiver{Learner: l}, nil
}

// Act draws the act to take on receiving signal.
func (r *Receiver) Act(src erand.Source, signal Signal) (State, error) {
	return r.Choose(src, signal)
}
