// Package report prints the final urn contents of a simulation.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"
	"github.com/zeu5/lewis-signaling/core"
	"github.com/zeu5/lewis-signaling/util"
)

type Options struct {
	// Color highlights the heaviest entry of every urn.
	Color bool
}

// ColorEnabled reports whether f is a terminal that can show colours.
func ColorEnabled(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Write prints, for each state, the weight of each signal in the Sender's
// urn, then for each signal the weight of each state in the Receiver's
// urn, then the overall success rate.
func Write(w io.Writer, result *core.Result, opts Options) error {
	au := aurora.NewAurora(opts.Color)
	out := &errWriter{w: w}

	out.printf("Sender:\n")
	for _, st := range util.SortedKeys(result.Sender) {
		out.printf("\tState %d:\n", st)
		writeUrn(out, au, "Signal", result.Sender[st])
	}
	out.printf("Receiver:\n")
	for _, sg := range util.SortedKeys(result.Receiver) {
		out.printf("\tSignal %d:\n", sg)
		writeUrn(out, au, "State", result.Receiver[sg])
	}
	out.printf("Success rate: %.4f (%d/%d)\n", result.SuccessRate, result.Successes, result.Rounds)
	return out.err
}

func writeUrn[O ~int](out *errWriter, au aurora.Aurora, label string, urn map[O]float64) {
	keys := util.SortedKeys(urn)
	weights := make([]float64, len(keys))
	for i, k := range keys {
		weights[i] = urn[k]
	}
	best := util.ArgMax(weights)
	for i, k := range keys {
		line := fmt.Sprintf("%s %d weight: %s", label, k, FormatWeight(weights[i]))
		if i == best && len(keys) > 1 {
			out.printf("\t\t%v\n", au.Green(line).Bold())
		} else {
			out.printf("\t\t%s\n", line)
		}
	}
}

// FormatWeight prints whole weights without decimals and others with four.
func FormatWeight(w float64) string {
	if w == math.Trunc(w) && math.Abs(w) < 1e15 {
		return fmt.Sprintf("%.0f", w)
	}
	return fmt.Sprintf("%.4f", w)
}

// JSON writes the result as an indented JSON document.
func JSON(w io.Writer, result *core.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
