package stats

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/MacroPower/csvdash/pkg/dataset"
)

// Summary describes the distribution of a set of values.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// Summarize returns the five-number summary and mean of values. Quantiles
// use linear interpolation between closest ranks. An empty input returns the
// zero [Summary].
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
	}
}

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))

	if lo == hi {
		return sorted[lo]
	}

	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Group holds the mean of a value column for one group.
type Group struct {
	Name  string  `json:"name"`
	Color string  `json:"color,omitempty"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// GroupBy computes the mean and count of valueCol for every distinct
// (groupCol, colorCol) pair, in order of first appearance. colorCol may be
// empty or equal to groupCol, in which case rows are grouped by groupCol
// only. Rows whose value is not numeric are ignored.
func GroupBy(t *dataset.Table, groupCol, colorCol, valueCol string) ([]Group, error) {
	gi, vi, err := indexes(t, groupCol, valueCol)
	if err != nil {
		return nil, err
	}

	ci := -1
	if colorCol != "" && colorCol != groupCol {
		ci = t.Index(colorCol)
		if ci < 0 {
			return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownColumn, colorCol)
		}
	}

	type key struct{ name, color string }

	order := []key{}
	sums := map[key]float64{}
	counts := map[key]int{}

	for _, row := range t.Rows {
		v, ok := dataset.ParseFloat(row[vi])
		if !ok {
			continue
		}

		k := key{name: row[gi]}
		if ci >= 0 {
			k.color = row[ci]
		}

		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}

		sums[k] += v
		counts[k]++
	}

	groups := make([]Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, Group{
			Name:  k.name,
			Color: k.color,
			Mean:  sums[k] / float64(counts[k]),
			Count: counts[k],
		})
	}

	return groups, nil
}

// Top returns the n groups with the highest mean, ties broken by name. A
// non-positive n returns all groups, sorted.
func Top(groups []Group, n int) []Group {
	sorted := slices.Clone(groups)
	slices.SortStableFunc(sorted, func(a, b Group) int {
		if c := cmp.Compare(b.Mean, a.Mean); c != 0 {
			return c
		}

		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}

		return cmp.Compare(a.Color, b.Color)
	})

	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}

	return sorted
}

// GroupSummary is the [Summary] of one group's values.
type GroupSummary struct {
	Name   string    `json:"name"`
	Values []float64 `json:"-"`
	Summary
}

// SummarizeBy returns a [GroupSummary] of valueCol per distinct groupCol
// value, in order of first appearance.
func SummarizeBy(t *dataset.Table, groupCol, valueCol string) ([]GroupSummary, error) {
	gi, vi, err := indexes(t, groupCol, valueCol)
	if err != nil {
		return nil, err
	}

	order := []string{}
	values := map[string][]float64{}

	for _, row := range t.Rows {
		v, ok := dataset.ParseFloat(row[vi])
		if !ok {
			continue
		}

		name := row[gi]
		if _, seen := values[name]; !seen {
			order = append(order, name)
		}

		values[name] = append(values[name], v)
	}

	out := make([]GroupSummary, 0, len(order))
	for _, name := range order {
		out = append(out, GroupSummary{
			Name:    name,
			Values:  values[name],
			Summary: Summarize(values[name]),
		})
	}

	return out, nil
}

// Columns returns a [Summary] for each numeric column of t.
func Columns(t *dataset.Table) map[string]Summary {
	out := map[string]Summary{}

	for _, col := range t.NumericColumns() {
		values, _, err := t.Floats(col)
		if err != nil {
			continue
		}

		out[col] = Summarize(values)
	}

	return out
}

func indexes(t *dataset.Table, groupCol, valueCol string) (int, int, error) {
	gi := t.Index(groupCol)
	if gi < 0 {
		return 0, 0, fmt.Errorf("%w: %q", dataset.ErrUnknownColumn, groupCol)
	}

	vi := t.Index(valueCol)
	if vi < 0 {
		return 0, 0, fmt.Errorf("%w: %q", dataset.ErrUnknownColumn, valueCol)
	}

	return gi, vi, nil
}
