package pipeline

import (
	"math"
	"testing"

	"churn-dashboard/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binTotal(bins []Bin) int {
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	return total
}

func TestDistributionMonthlyCharges(t *testing.T) {
	d := distribution(fixtureDataset(t), dataset.MonthlyCharges)

	assert.Equal(t, 41, d.N)
	assert.Equal(t, 18.95, d.Min)
	assert.Equal(t, 113.25, d.Max)
	assert.InDelta(t, 66.5512, d.Mean, 1e-3)
	require.NotEmpty(t, d.Bins)
	assert.Equal(t, d.N, binTotal(d.Bins))
	assert.Equal(t, d.Min, d.Bins[0].Lo)
	assert.Equal(t, d.Max, d.Bins[len(d.Bins)-1].Hi)
	assert.Len(t, d.Density, densityGridSize)
	for _, p := range d.Density {
		assert.GreaterOrEqual(t, p.Y, 0.0)
	}
}

func TestDistributionSkipsBlankCells(t *testing.T) {
	d := distribution(fixtureDataset(t), dataset.TotalCharges)

	assert.Equal(t, 40, d.N)
	assert.Equal(t, 20.15, d.Min)
	assert.Equal(t, 7895.15, d.Max)
	assert.Equal(t, d.N, binTotal(d.Bins))
}

func TestDistributionEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		cells    []string
		wantN    int
		wantBins int
		density  bool
	}{
		{"no values", []string{"", " "}, 0, 0, false},
		{"single value", []string{"42"}, 1, 1, false},
		{"constant column", []string{"5", "5", "5"}, 3, 1, false},
		{"spread", []string{"1", "2", "3", "4", "10"}, 5, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]string, len(tt.cells))
			for i, c := range tt.cells {
				rows[i] = []string{c}
			}
			ds := dataset.New(tt.name, []string{"Monthly_Charges"}, rows)
			d := distribution(ds, dataset.MonthlyCharges)

			assert.Equal(t, tt.wantN, d.N)
			if tt.wantBins >= 0 {
				assert.Len(t, d.Bins, tt.wantBins)
			}
			assert.Equal(t, tt.wantN, binTotal(d.Bins))
			assert.Equal(t, tt.density, len(d.Density) > 0)
		})
	}
}

func TestBinCountNeverZero(t *testing.T) {
	assert.Equal(t, 1, binCount([]float64{3, 3}))
	assert.GreaterOrEqual(t, binCount([]float64{0, 1, 2, 3, 100}), 1)
	assert.Equal(t, 1, binCount([]float64{-math.MaxFloat64, math.MaxFloat64}))
}
