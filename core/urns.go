package core

import (
	"math"
	"strings"

	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"
)

const (
	// InitialWeight is the weight of every outcome in a fresh urn.
	InitialWeight = 1.0
	// Unit is the reinforcement increment and the punishment threshold.
	Unit = 1.0
	// SumTolerance bounds how far normalized weights may drift from 1.
	SumTolerance = 1e-9
	// DefaultMinWeight is the floor no weight is pushed below.
	DefaultMinWeight = 1e-9
)

// PunishRule selects what Punish does to an outcome's weight.
type PunishRule int

const (
	// PunishInverted adds a unit when the weight exceeds one unit, so the
	// "punishment" grows the weight. It is the default rule.
	PunishInverted PunishRule = iota
	// PunishDecay removes a unit when the weight exceeds one unit.
	PunishDecay
)

func (p PunishRule) String() string {
	switch p {
	case PunishInverted:
		return "inverted"
	case PunishDecay:
		return "decay"
	default:
		return "unknown"
	}
}

// ParsePunishRule maps "inverted" or "decay" (case-insensitive) to a rule.
func ParsePunishRule(s string) (PunishRule, error) {
	switch strings.ToLower(s) {
	case "inverted", "":
		return PunishInverted, nil
	case "decay":
		return PunishDecay, nil
	default:
		return PunishInverted, configError("unknown punish rule %q, supported: inverted, decay", s)
	}
}

// Option configures an urn set.
type Option func(*urnOptions)

type urnOptions struct {
	punish    PunishRule
	minWeight float64
}

// WithPunishRule sets the rule applied by Punish.
func WithPunishRule(rule PunishRule) Option {
	return func(o *urnOptions) {
		o.punish = rule
	}
}

// WithMinWeight sets the floor that Perturb and decaying punishment
// clamp weights to. It must be positive and at most InitialWeight.
func WithMinWeight(w float64) Option {
	return func(o *urnOptions) {
		o.minWeight = w
	}
}

// UrnSet maps every urn-type key to an urn holding one weight per outcome.
// Keys and outcomes are fixed at construction and always walked in the
// order given there, so a seeded source reproduces a run exactly.
type UrnSet[K comparable, O comparable] struct {
	role     string
	keys     []K
	outcomes []O
	urns     map[K]map[O]float64
	punish   PunishRule
	floor    float64
}

// NewUrnSet creates one urn per key with InitialWeight for every outcome.
func NewUrnSet[K comparable, O comparable](role string, keys []K, outcomes []O, opts ...Option) (*UrnSet[K, O], error) {
	if err := uniqueLabels("urn", keys); err != nil {
		return nil, err
	}
	if err := uniqueLabels("outcome", outcomes); err != nil {
		return nil, err
	}
	o := &urnOptions{punish: PunishInverted, minWeight: DefaultMinWeight}
	for _, opt := range opts {
		opt(o)
	}
	if math.IsNaN(o.minWeight) || o.minWeight <= 0 || o.minWeight > InitialWeight {
		return nil, configError("minimum weight must be in (0, %v], got %v", InitialWeight, o.minWeight)
	}

	u := &UrnSet[K, O]{
		role:     role,
		keys:     append([]K(nil), keys...),
		outcomes: append([]O(nil), outcomes...),
		urns:     make(map[K]map[O]float64, len(keys)),
		punish:   o.punish,
		floor:    o.minWeight,
	}
	for _, k := range u.keys {
		urn := make(map[O]float64, len(u.outcomes))
		for _, out := range u.outcomes {
			urn[out] = InitialWeight
		}
		u.urns[k] = urn
	}
	return u, nil
}

func uniqueLabels[T comparable](kind string, labels []T) error {
	if len(labels) == 0 {
		return configError("no %s labels", kind)
	}
	seen := make(map[T]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return configError("duplicate %s label %v", kind, l)
		}
		seen[l] = true
	}
	return nil
}

func (u *UrnSet[K, O]) urn(key K) (map[O]float64, error) {
	urn, ok := u.urns[key]
	if !ok {
		return nil, &UnknownKeyError{Role: u.role, Kind: "urn", Key: key}
	}
	return urn, nil
}

func (u *UrnSet[K, O]) cell(key K, outcome O) (map[O]float64, error) {
	urn, err := u.urn(key)
	if err != nil {
		return nil, err
	}
	if _, ok := urn[outcome]; !ok {
		return nil, &UnknownKeyError{Role: u.role, Kind: "outcome", Key: outcome}
	}
	return urn, nil
}

func (u *UrnSet[K, O]) ordered(urn map[O]float64) []float64 {
	weights := make([]float64, len(u.outcomes))
	for i, o := range u.outcomes {
		weights[i] = urn[o]
	}
	return weights
}

// Probabilities returns the sampling distribution of the urn in outcome
// order. The last entry is 1 minus the sum of the others so the vector
// sums to 1 without accumulated rounding drift. Corrupt weights yield an
// *InvariantError instead of a renormalized distribution.
func (u *UrnSet[K, O]) Probabilities(key K) ([]float64, error) {
	urn, err := u.urn(key)
	if err != nil {
		return nil, err
	}
	weights := u.ordered(urn)

	total := float64(0)
	for _, w := range weights {
		total += w
	}
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return nil, &InvariantError{Role: u.role, Urn: key, Weights: weights, Sum: total}
	}

	probs := make([]float64, len(weights))
	sum := float64(0)
	last := len(weights) - 1
	for i := 0; i < last; i++ {
		probs[i] = weights[i] / total
		sum += probs[i]
	}
	probs[last] = 1 - sum
	sum += probs[last]

	if !validDistribution(weights, probs, sum, u.floor) {
		return nil, &InvariantError{Role: u.role, Urn: key, Weights: weights, Sum: sum}
	}
	if probs[last] < 0 {
		probs[last] = 0
	}
	return probs, nil
}

func validDistribution(weights, probs []float64, sum, floor float64) bool {
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < floor {
			return false
		}
	}
	for _, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < -SumTolerance || p > 1+SumTolerance {
			return false
		}
	}
	return math.Abs(sum-1) <= SumTolerance
}

// Choose draws an outcome from the urn with probability proportional to
// its weight.
func (u *UrnSet[K, O]) Choose(src erand.Source, key K) (O, error) {
	var zero O
	probs, err := u.Probabilities(key)
	if err != nil {
		return zero, err
	}
	if len(probs) == 1 {
		return u.outcomes[0], nil
	}
	i, ok := sampleuv.NewWeighted(probs, src).Take()
	if !ok {
		urn := u.urns[key]
		return zero, &InvariantError{Role: u.role, Urn: key, Weights: u.ordered(urn), Sum: 0}
	}
	return u.outcomes[i], nil
}

// Reinforce adds amount to the weight of outcome in the urn for key.
func (u *UrnSet[K, O]) Reinforce(key K, outcome O, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return configError("reinforcement amount must be positive, got %v", amount)
	}
	urn, err := u.cell(key, outcome)
	if err != nil {
		return err
	}
	urn[outcome] += amount
	return nil
}

// Punish applies the set's PunishRule to outcome in the urn for key.
// Weights at or below one unit are left alone and a decayed weight is
// clamped to the set's minimum weight.
func (u *UrnSet[K, O]) Punish(key K, outcome O) error {
	urn, err := u.cell(key, outcome)
	if err != nil {
		return err
	}
	if urn[outcome] <= Unit {
		return nil
	}
	switch u.punish {
	case PunishDecay:
		urn[outcome] = math.Max(urn[outcome]-Unit, u.floor)
	default:
		urn[outcome] += Unit
	}
	return nil
}

// Perturb multiplies every weight of every urn by an independent draw
// from the uniform distribution on [low, high]. Weights that would fall
// below the set's minimum weight are clamped to it.
func (u *UrnSet[K, O]) Perturb(src erand.Source, low, high float64) error {
	if err := ValidateInterval(low, high); err != nil {
		return err
	}
	dist := distuv.Uniform{Min: low, Max: high, Src: src}
	for _, k := range u.keys {
		urn := u.urns[k]
		for _, o := range u.outcomes {
			urn[o] = math.Max(urn[o]*dist.Rand(), u.floor)
		}
	}
	return nil
}

// ValidateInterval checks a perturbation interval: 0 < low <= high.
func ValidateInterval(low, high float64) error {
	if math.IsNaN(low) || math.IsNaN(high) || math.IsInf(high, 0) {
		return configError("perturbation interval [%v, %v] is not finite", low, high)
	}
	if low <= 0 {
		return configError("perturbation lower bound must be positive, got %v", low)
	}
	if low > high {
		return configError("perturbation interval [%v, %v] has low > high", low, high)
	}
	return nil
}

// Weight returns the weight of outcome in the urn for key.
func (u *UrnSet[K, O]) Weight(key K, outcome O) (float64, error) {
	urn, err := u.cell(key, outcome)
	if err != nil {
		return 0, err
	}
	return urn[outcome], nil
}

// Weights returns a copy of the urn's weights in outcome order.
func (u *UrnSet[K, O]) Weights(key K) ([]float64, error) {
	urn, err := u.urn(key)
	if err != nil {
		return nil, err
	}
	return u.ordered(urn), nil
}

// Keys returns the urn-type labels in construction order.
func (u *UrnSet[K, O]) Keys() []K {
	return append([]K(nil), u.keys...)
}

// Outcomes returns the outcome labels in construction order.
func (u *UrnSet[K, O]) Outcomes() []O {
	return append([]O(nil), u.outcomes...)
}

// PunishRule returns the rule Punish applies.
func (u *UrnSet[K, O]) PunishRule() PunishRule {
	return u.punish
}

// MinWeight returns the floor weights are clamped to.
func (u *UrnSet[K, O]) MinWeight() float64 {
	return u.floor
}

// Snapshot returns a deep copy of all urns.
func (u *UrnSet[K, O]) Snapshot() map[K]map[O]float64 {
	out := make(map[K]map[O]float64, len(u.urns))
	for k, urn := range u.urns {
		cp := make(map[O]float64, len(urn))
		for o, w := range urn {
			cp[o] = w
		}
		out[k] = cp
	}
	return out
}
