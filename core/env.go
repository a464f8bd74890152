package core

import (
	"context"
	"math"

	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Environment draws the world state the Sender observes each round.
type Environment interface {
	States() []State
	Draw(erand.Source) State
}

// UniformEnvironment draws every state with equal probability.
type UniformEnvironment struct {
	states []State
}

var _ Environment = &UniformEnvironment{}

func NewUniformEnvironment(states []State) (*UniformEnvironment, error) {
	if err := uniqueLabels("state", states); err != nil {
		return nil, err
	}
	return &UniformEnvironment{states: append([]State(nil), states...)}, nil
}

func (u *UniformEnvironment) States() []State {
	return append([]State(nil), u.states...)
}

func (u *UniformEnvironment) Draw(src erand.Source) State {
	return u.states[erand.New(src).Intn(len(u.states))]
}

// WeightedEnvironment draws states according to fixed prior weights.
type WeightedEnvironment struct {
	states  []State
	weights []float64
}

var _ Environment = &WeightedEnvironment{}

func NewWeightedEnvironment(states []State, weights []float64) (*WeightedEnvironment, error) {
	if err := uniqueLabels("state", states); err != nil {
		return nil, err
	}
	if len(weights) != len(states) {
		return nil, configError("got %d state weights for %d states", len(weights), len(states))
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return nil, configError("weight of state %d must be positive, got %v", states[i], w)
		}
	}
	return &WeightedEnvironment{
		states:  append([]State(nil), states...),
		weights: append([]float64(nil), weights...),
	}, nil
}

func (w *WeightedEnvironment) States() []State {
	return append([]State(nil), w.states...)
}

func (w *WeightedEnvironment) Draw(src erand.Source) State {
	i, ok := sampleuv.NewWeighted(w.weights, src).Take()
	if !ok {
		return w.states[0]
	}
	return w.states[i]
}

// RunContext is shared by every round of one simulation run.
type RunContext struct {
	Context    context.Context
	Experiment string
	Run        int
	Rounds     int

	// Source is the only random source of the run.
	Source erand.Source
	Trace  *Trace
}

type RoundContext struct {
	Round int
	*RunContext
}
