package analysis

import "github.com/zeu5/lewis-signaling/core"

// UsageDataset counts which signal was sent for each state and which act
// followed each signal.
type UsageDataset struct {
	Signals map[core.State]map[core.Signal]int `json:"signals"`
	Acts    map[core.Signal]map[core.State]int `json:"acts"`
}

func (u *UsageDataset) Copy() *UsageDataset {
	out := &UsageDataset{
		Signals: make(map[core.State]map[core.Signal]int, len(u.Signals)),
		Acts:    make(map[core.Signal]map[core.State]int, len(u.Acts)),
	}
	for st, row := range u.Signals {
		out.Signals[st] = make(map[core.Signal]int, len(row))
		for sg, n := range row {
			out.Signals[st][sg] = n
		}
	}
	for sg, row := range u.Acts {
		out.Acts[sg] = make(map[core.State]int, len(row))
		for act, n := range row {
			out.Acts[sg][act] = n
		}
	}
	return out
}

// UsageAnalyzer counts signal and act usage over the last fraction of a
// run, once the learners have had time to settle.
type UsageAnalyzer struct {
	tail    float64
	dataset *UsageDataset
}

var _ core.Analyzer = &UsageAnalyzer{}

// NewUsageAnalyzer counts the last tail fraction of rounds; tail outside (0, 1] counts all of them.
func NewUsageAnalyzer(tail float64) *UsageAnalyzer {
	if tail <= 0 || tail > 1 {
		tail = 1
	}
	u := &UsageAnalyzer{tail: tail}
	u.Reset()
	return u
}

func (u *UsageAnalyzer) Reset() {
	u.dataset = &UsageDataset{
		Signals: make(map[core.State]map[core.Signal]int),
		Acts:    make(map[core.Signal]map[core.State]int),
	}
}

func (u *UsageAnalyzer) Analyze(rCtx *core.RoundContext, round *core.Round) {
	start := rCtx.Rounds - int(float64(rCtx.Rounds)*u.tail)
	if rCtx.Round < start {
		return
	}
	if _, ok := u.dataset.Signals[round.State]; !ok {
		u.dataset.Signals[round.State] = make(map[core.Signal]int)
	}
	u.dataset.Signals[round.State][round.Signal]++
	if _, ok := u.dataset.Acts[round.Signal]; !ok {
		u.dataset.Acts[round.Signal] = make(map[core.State]int)
	}
	u.dataset.Acts[round.Signal][round.Act]++
}

func (u *UsageAnalyzer) DataSet() core.DataSet {
	return u.dataset.Copy()
}

type UsageAnalyzerConstructor struct {
	tail float64
}

var _ core.AnalyzerConstructor = &UsageAnalyzerConstructor{}

func NewUsageAnalyzerConstructor(tail float64) *UsageAnalyzerConstructor {
	return &UsageAnalyzerConstructor{tail: tail}
}

func (u *UsageAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewUsageAnalyzer(u.tail)
}
