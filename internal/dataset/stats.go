package dataset

import (
	"math"
	"sort"
)

// Descriptive statistics for one numeric column. Std is the sample standard
// deviation; quartiles use linear interpolation.
type Describe struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

func describe(vals []float64) Describe {
	d := Describe{Count: len(vals)}
	if len(vals) == 0 {
		d.Mean = math.NaN()
		d.Std = math.NaN()
		d.Min = math.NaN()
		d.Q25 = math.NaN()
		d.Q50 = math.NaN()
		d.Q75 = math.NaN()
		d.Max = math.NaN()
		return d
	}

	d.Mean = mean(vals)
	d.Std = stddev(vals, d.Mean)

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	d.Min = sorted[0]
	d.Max = sorted[len(sorted)-1]
	d.Q25 = quantile(sorted, 0.25)
	d.Q50 = quantile(sorted, 0.50)
	d.Q75 = quantile(sorted, 0.75)
	return d
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddev is the sample standard deviation (n-1 denominator). NaN for fewer
// than two values.
func stddev(vals []float64, m float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// quantile expects sorted input and interpolates linearly between ranks.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// pearson computes the correlation coefficient of two equal-length series.
// NaN when either series is constant or has fewer than two points.
func pearson(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return math.NaN()
	}

	mx := mean(xs)
	my := mean(ys)

	var cov, vx, vy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(vx*vy)
}

