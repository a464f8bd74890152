package analysis

import (
	"fmt"
	"path"

	"github.com/zeu5/lewis-signaling/core"
	"github.com/zeu5/lewis-signaling/util"
)

// TraceAnalyzer writes the run's recorded rounds as JSON lines to
// savePath/traces once the run ends, including runs that abort early.
// The run needs core.RunConfig.RecordTrace set for rounds to be recorded.
type TraceAnalyzer struct {
	savePath string
	exp      string
	run      int
	err      error
}

var (
	_ core.Analyzer = &TraceAnalyzer{}
	_ core.Finisher = &TraceAnalyzer{}
)

func NewTraceAnalyzer(savePath, exp string, run int) *TraceAnalyzer {
	return &TraceAnalyzer{
		savePath: path.Join(savePath, "traces"),
		exp:      exp,
		run:      run,
	}
}

func (t *TraceAnalyzer) Reset() {
	t.err = nil
}

// Analyze does nothing; the rounds are read from the run's trace in Finish.
func (t *TraceAnalyzer) Analyze(_ *core.RoundContext, _ *core.Round) {}

func (t *TraceAnalyzer) Finish(rCtx *core.RunContext) {
	t.err = util.SaveJsonLines(t.FileName(), rCtx.Trace.Rounds())
}

func (t *TraceAnalyzer) FileName() string {
	fileName := fmt.Sprintf("%d_trace.jsonl", t.run)
	if t.exp != "" {
		fileName = fmt.Sprintf("%d_%s_trace.jsonl", t.run, t.exp)
	}
	return path.Join(t.savePath, fileName)
}

// DataSet returns the error of writing the trace, if any.
func (t *TraceAnalyzer) DataSet() core.DataSet {
	return t.err
}

type TraceAnalyzerConstructor struct {
	SavePath string
}

var _ core.AnalyzerConstructor = &TraceAnalyzerConstructor{}

func NewTraceAnalyzerConstructor(savePath string) *TraceAnalyzerConstructor {
	return &TraceAnalyzerConstructor{SavePath: savePath}
}

func (c *TraceAnalyzerConstructor) NewAnalyzer(exp string, run int) core.Analyzer {
	return NewTraceAnalyzer(c.SavePath, exp, run)
}
