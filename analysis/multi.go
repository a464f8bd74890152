package analysis

import "github.com/zeu5/lewis-signaling/core"

// MultiComparator hands the same datasets to several comparators.
type MultiComparator []core.Comparator

var _ core.Comparator = MultiComparator{}

func (m MultiComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	for _, c := range m {
		c.Compare(experimentNames, datasets)
	}
}

type MultiComparatorConstructor []core.ComparatorConstructor

var _ core.ComparatorConstructor = MultiComparatorConstructor{}

func NewMultiComparatorConstructor(cs ...core.ComparatorConstructor) MultiComparatorConstructor {
	return MultiComparatorConstructor(cs)
}

func (m MultiComparatorConstructor) NewComparator(run int) core.Comparator {
	out := make(MultiComparator, 0, len(m))
	for _, c := range m {
		out = append(out, c.NewComparator(run))
	}
	return out
}
