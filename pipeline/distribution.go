package pipeline

import (
	"math"
	"sort"

	"churn-dashboard/dataset"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// densityGridSize is the number of points the density curve is evaluated at.
const densityGridSize = 200

type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distribution is a raw numeric column summarised as a histogram plus a
// Gaussian kernel density estimate scaled to the histogram's count axis.
type Distribution struct {
	Field   dataset.Field `json:"field"`
	N       int           `json:"n"`
	Min     float64       `json:"min"`
	Max     float64       `json:"max"`
	Mean    float64       `json:"mean"`
	Bins    []Bin         `json:"bins"`
	Density []Point       `json:"density,omitempty"`
}

func distribution(ds *dataset.Dataset, f dataset.Field) Distribution {
	values := make([]float64, 0, ds.Len())
	for _, rec := range ds.Records {
		if n := rec.Num(f); n.Valid {
			values = append(values, n.Value)
		}
	}
	out := Distribution{Field: f, N: len(values)}
	if len(values) == 0 {
		return out
	}
	sort.Float64s(values)

	out.Min = values[0]
	out.Max = values[len(values)-1]
	out.Mean = stat.Mean(values, nil)
	out.Bins = histogram(values)

	if len(out.Bins) > 0 {
		width := out.Bins[0].Hi - out.Bins[0].Lo
		out.Density = density(values, width)
	}
	return out
}

// binCount follows numpy's "auto" estimator: the smaller of the
// Freedman-Diaconis and Sturges bin widths. sorted must be ascending.
func binCount(sorted []float64) int {
	n := float64(len(sorted))
	span := sorted[len(sorted)-1] - sorted[0]
	if span == 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return 1
	}
	sturges := span / (math.Log2(n) + 1)
	width := sturges
	iqr := stat.Quantile(0.75, stat.LinInterp, sorted, nil) - stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	if fd := 2 * iqr * math.Pow(n, -1.0/3); fd > 0 && fd < sturges {
		width = fd
	}
	return int(math.Max(1, math.Ceil(span/width)))
}

// histogram bins ascending values into equal-width bins. The last bin is
// closed so the maximum value is counted.
func histogram(sorted []float64) []Bin {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []Bin{{Lo: lo - 0.5, Hi: hi + 0.5, Count: len(sorted)}}
	}

	k := binCount(sorted)
	dividers := make([]float64, k+1)
	floats.Span(dividers, lo, hi)
	dividers[k] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	bins := make([]Bin, k)
	for i := range bins {
		bins[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	bins[k-1].Hi = hi
	return bins
}

// density evaluates a Gaussian KDE with Scott's bandwidth over [min, max]
// and scales it by n*binWidth so it overlays a count histogram.
func density(sorted []float64, binWidth float64) []Point {
	n := float64(len(sorted))
	if n < 2 {
		return nil
	}
	sd := stat.StdDev(sorted, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(n, -1.0/5)
	kernel := distuv.UnitNormal

	xs := make([]float64, densityGridSize)
	floats.Span(xs, sorted[0], sorted[len(sorted)-1])

	points := make([]Point, len(xs))
	for i, x := range xs {
		var sum float64
		for _, v := range sorted {
			sum += kernel.Prob((x - v) / bw)
		}
		pdf := sum / (n * bw)
		points[i] = Point{X: x, Y: pdf * n * binWidth}
	}
	return points
}
