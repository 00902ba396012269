package analysis

import (
	"cmp"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"issue-insights/backend/internal/render"
)

const histogramBins = 30

// histogram splits values into n equal-width bins spanning [min, max]. The
// last divider is nudged past max so the largest value lands in the last bin.
func histogram(values []float64, n int) render.Bins {
	if len(values) == 0 {
		return render.Bins{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	dividers := floats.Span(make([]float64, n+1), lo, hi)
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	return render.Bins{
		Dividers: dividers,
		Counts:   stat.Histogram(nil, dividers, sorted, nil),
	}
}

// median of values; for an even count it is the midpoint of the two middle
// values. values must be non-empty.
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// trend fits y = alpha + beta*x by least squares and returns the slope and
// the Pearson correlation. ok is false when x has no spread.
func trend(x, y []float64) (alpha, beta, correlation float64, ok bool) {
	if len(x) < 2 || floats.Min(x) == floats.Max(x) {
		return 0, 0, math.NaN(), false
	}
	alpha, beta = stat.LinearRegression(x, y, nil, false)
	return alpha, beta, stat.Correlation(x, y, nil), true
}

// fractionalYear maps t to year + elapsed fraction of that year
func fractionalYear(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + t.Sub(start).Seconds()/end.Sub(start).Seconds()
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type count struct {
	key string
	n   int
}

// topCounts orders counts by n descending then key, keeping at most limit
func topCounts(m map[string]int, limit int) []count {
	out := make([]count, 0, len(m))
	for k, n := range m {
		out = append(out, count{key: k, n: n})
	}
	slices.SortFunc(out, func(a, b count) int {
		if c := cmp.Compare(b.n, a.n); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
