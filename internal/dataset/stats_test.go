package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	d := describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	assert.Equal(t, 8, d.Count)
	assert.InDelta(t, 5.0, d.Mean, 1e-9)
	assert.InDelta(t, 2.13809, d.Std, 1e-4)
	assert.Equal(t, 2.0, d.Min)
	assert.Equal(t, 9.0, d.Max)
	assert.InDelta(t, 4.0, d.Q25, 1e-9)
	assert.InDelta(t, 4.5, d.Q50, 1e-9)
	assert.InDelta(t, 5.5, d.Q75, 1e-9)
}

func TestDescribeEmpty(t *testing.T) {
	d := describe(nil)
	assert.Equal(t, 0, d.Count)
	assert.True(t, math.IsNaN(d.Mean))
	assert.True(t, math.IsNaN(d.Std))
}

func TestDescribeSingleValue(t *testing.T) {
	d := describe([]float64{3})
	assert.Equal(t, 1, d.Count)
	assert.Equal(t, 3.0, d.Mean)
	assert.True(t, math.IsNaN(d.Std), "sample std of one value is undefined")
	assert.Equal(t, 3.0, d.Q50)
}

func TestQuantileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, quantile(sorted, 0.25), 1e-9)
	assert.InDelta(t, 2.5, quantile(sorted, 0.50), 1e-9)
	assert.InDelta(t, 3.25, quantile(sorted, 0.75), 1e-9)
}

func TestPearson(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}

	perfect := pearson(xs, []float64{2, 4, 6, 8, 10})
	assert.InDelta(t, 1.0, perfect, 1e-9)

	inverse := pearson(xs, []float64{10, 8, 6, 4, 2})
	assert.InDelta(t, -1.0, inverse, 1e-9)

	constant := pearson(xs, []float64{7, 7, 7, 7, 7})
	assert.True(t, math.IsNaN(constant))

	tooShort := pearson([]float64{1}, []float64{2})
	assert.True(t, math.IsNaN(tooShort))
}
