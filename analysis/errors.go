package analysis

import (
	"log/slog"

	"github.com/zeu5/lewis-signaling/core"
	"github.com/zeu5/lewis-signaling/util"
)

// ErrorComparator keeps nothing. Datasets that are errors, such as a
// failed trace write, are logged per experiment.
type ErrorComparator struct {
	run    int
	logger *slog.Logger
}

var _ core.Comparator = &ErrorComparator{}

func NewErrorComparator(run int, logger *slog.Logger) *ErrorComparator {
	if logger == nil {
		logger = util.DiscardLogger()
	}
	return &ErrorComparator{run: run, logger: logger}
}

func (e *ErrorComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	for i, name := range experimentNames {
		if err, ok := datasets[i].(error); ok && err != nil {
			e.logger.Warn("analysis failed", "experiment", name, "run", e.run, "error", err)
		}
	}
}

type ErrorComparatorConstructor struct {
	logger *slog.Logger
}

var _ core.ComparatorConstructor = &ErrorComparatorConstructor{}

func NewErrorComparatorConstructor(logger *slog.Logger) *ErrorComparatorConstructor {
	return &ErrorComparatorConstructor{logger: logger}
}

func (e *ErrorComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewErrorComparator(run, e.logger)
}
