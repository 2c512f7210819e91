package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxNormalize(t *testing.T) {
	out := MinMaxNormalize([]float64{1, 3, 5}, 0)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, out, 1e-12)

	flat := MinMaxNormalize([]float64{4, 4}, 1e-6)
	assert.Equal(t, []float64{0, 0}, flat)

	assert.Empty(t, MinMaxNormalize(nil, 1e-6))
}

func TestStandardScale(t *testing.T) {
	rows := [][]float64{{1, 5}, {3, 5}}
	scaled := StandardScale(rows)
	require.Len(t, scaled, 2)

	assert.InDeltaSlice(t, []float64{-1, 0}, scaled[0], 1e-12)
	assert.InDeltaSlice(t, []float64{1, 0}, scaled[1], 1e-12)
	assert.Equal(t, []float64{1, 5}, rows[0], "input must not be modified")
	assert.Nil(t, StandardScale(nil))
}

func TestModeInt(t *testing.T) {
	assert.Equal(t, 3, ModeInt([]int{3, 1, 3, 2}))
	assert.Equal(t, 1, ModeInt([]int{5, 1, 5, 1}))
	assert.Equal(t, 0, ModeInt(nil))
}

func TestValueCountsAndTopLabels(t *testing.T) {
	labels := []string{"THEFT", "BATTERY", "THEFT", "ASSAULT", "BATTERY", "ROBBERY"}

	counts := ValueCounts(labels)
	assert.Equal(t, []Count{
		{Label: "THEFT", Count: 2},
		{Label: "BATTERY", Count: 2},
		{Label: "ASSAULT", Count: 1},
		{Label: "ROBBERY", Count: 1},
	}, counts)

	assert.Equal(t, []string{"THEFT", "BATTERY", "ASSAULT"}, TopLabels(labels, 3))
	assert.Len(t, TopLabels(labels, 10), 4)
}

func TestCircularMeanHour(t *testing.T) {
	midnight := CircularMeanHour([]int{23, 1})
	assert.InDelta(t, 0, math.Min(midnight, 24-midnight), 1e-9)
	assert.InDelta(t, 12, CircularMeanHour([]int{11, 13}), 1e-9)
	assert.InDelta(t, 22, CircularMeanHour([]int{21, 23}), 1e-9)

	assert.InDelta(t, 1, HourConcentration([]int{5, 5, 5}), 1e-9)
	assert.InDelta(t, 0, HourConcentration([]int{0, 12}), 1e-9)
}
