package analysis

import (
	"log/slog"
	"path"
	"strconv"

	"github.com/zeu5/lewis-signaling/core"
	"github.com/zeu5/lewis-signaling/util"
)

// JSONComparator saves the datasets of every experiment to a single JSON
// file keyed by experiment name.
type JSONComparator struct {
	savePath string
	logger   *slog.Logger
}

var _ core.Comparator = &JSONComparator{}

func NewJSONComparator(savePath, name string, logger *slog.Logger) *JSONComparator {
	if logger == nil {
		logger = util.DiscardLogger()
	}
	return &JSONComparator{
		savePath: path.Join(savePath, name+".json"),
		logger:   logger,
	}
}

func (j *JSONComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]core.DataSet)
	for i, name := range experimentNames {
		if datasets[i] == nil {
			continue
		}
		out[name] = datasets[i]
	}
	if err := util.SaveJson(j.savePath, out); err != nil {
		j.logger.Error("saving comparison", "path", j.savePath, "error", err)
	}
}

type JSONComparatorConstructor struct {
	savePath string
	name     string
	logger   *slog.Logger
}

var _ core.ComparatorConstructor = &JSONComparatorConstructor{}

func NewJSONComparatorConstructor(savePath, name string, logger *slog.Logger) *JSONComparatorConstructor {
	return &JSONComparatorConstructor{
		savePath: savePath,
		name:     name,
		logger:   logger,
	}
}

func (j *JSONComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewJSONComparator(path.Join(j.savePath, strconv.Itoa(run)), j.name, j.logger)
}
