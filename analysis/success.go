package analysis

import (
	"github.com/zeu5/lewis-signaling/core"
	"github.com/zeu5/lewis-signaling/util"
)

// SuccessDataset holds the success rate sampled every window rounds.
// Cumulative counts every round so far, Windowed only the last window.
type SuccessDataset struct {
	Rounds     []int     `json:"rounds"`
	Cumulative []float64 `json:"cumulative"`
	Windowed   []float64 `json:"windowed"`
}

func (s *SuccessDataset) Copy() *SuccessDataset {
	return &SuccessDataset{
		Rounds:     util.CopyIntSlice(s.Rounds),
		Cumulative: util.CopyFloatSlice(s.Cumulative),
		Windowed:   util.CopyFloatSlice(s.Windowed),
	}
}

// Final returns the last windowed success rate, or 0 for an empty dataset.
func (s *SuccessDataset) Final() float64 {
	if len(s.Windowed) == 0 {
		return 0
	}
	return s.Windowed[len(s.Windowed)-1]
}

type SuccessAnalyzer struct {
	window int

	rounds          int
	successes       int
	windowRounds    int
	windowSuccesses int
	dataset         *SuccessDataset
}

var _ core.Analyzer = &SuccessAnalyzer{}

func NewSuccessAnalyzer(window int) *SuccessAnalyzer {
	if window < 1 {
		window = 1
	}
	s := &SuccessAnalyzer{window: window}
	s.Reset()
	return s
}

func (s *SuccessAnalyzer) Reset() {
	s.rounds = 0
	s.successes = 0
	s.windowRounds = 0
	s.windowSuccesses = 0
	s.dataset = &SuccessDataset{
		Rounds:     make([]int, 0),
		Cumulative: make([]float64, 0),
		Windowed:   make([]float64, 0),
	}
}

func (s *SuccessAnalyzer) Analyze(rCtx *core.RoundContext, round *core.Round) {
	s.rounds++
	s.windowRounds++
	if round.Success {
		s.successes++
		s.windowSuccesses++
	}
	// close the window, and the trailing partial window on the last round
	if s.windowRounds == s.window || rCtx.Round == rCtx.Rounds-1 {
		s.dataset.Rounds = append(s.dataset.Rounds, s.rounds)
		s.dataset.Cumulative = append(s.dataset.Cumulative, float64(s.successes)/float64(s.rounds))
		s.dataset.Windowed = append(s.dataset.Windowed, float64(s.windowSuccesses)/float64(s.windowRounds))
		s.windowRounds = 0
		s.windowSuccesses = 0
	}
}

func (s *SuccessAnalyzer) DataSet() core.DataSet {
	return s.dataset.Copy()
}

type SuccessAnalyzerConstructor struct {
	window int
}

var _ core.AnalyzerConstructor = &SuccessAnalyzerConstructor{}

func NewSuccessAnalyzerConstructor(window int) *SuccessAnalyzerConstructor {
	return &SuccessAnalyzerConstructor{window: window}
}

func (s *SuccessAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewSuccessAnalyzer(s.window)
}
