package stats

import (
	"math"
)

// CircularMeanHour returns the mean hour of day on the 24h circle, in [0, 24).
// 23:00 and 01:00 average to midnight rather than noon.
func CircularMeanHour(hours []int) float64 {
	if len(hours) == 0 {
		return 0
	}

	sumSin, sumCos := hourComponents(hours)
	meanRad := math.Atan2(sumSin, sumCos)
	mean := meanRad * 24 / (2 * math.Pi)
	if mean < 0 {
		mean += 24
	}
	return mean
}

// HourConcentration calculates the mean resultant length of the hours.
// R ranges from 0 (spread evenly over the day) to 1 (all in the same hour).
func HourConcentration(hours []int) float64 {
	if len(hours) == 0 {
		return 0
	}

	sumSin, sumCos := hourComponents(hours)
	return math.Sqrt(sumSin*sumSin+sumCos*sumCos) / float64(len(hours))
}

func hourComponents(hours []int) (float64, float64) {
	var sumSin, sumCos float64
	for _, h := range hours {
		angle := float64(h) * 2 * math.Pi / 24
		sumSin += math.Sin(angle)
		sumCos += math.Cos(angle)
	}
	return sumSin, sumCos
}
