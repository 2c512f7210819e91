package stats

import (
	"math"
	"sort"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// StdDev calculates the population standard deviation
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := Mean(values)
	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)))
}

// Min returns the minimum value
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum value
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Sum returns the sum of all values
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// MinMaxNormalize rescales values to (v - min) / (max - min + eps).
// With eps > 0 an all-equal input maps to zeros instead of dividing by zero.
func MinMaxNormalize(values []float64, eps float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	min, max := Min(values), Max(values)
	denom := max - min + eps
	for i, v := range values {
		out[i] = (v - min) / denom
	}
	return out
}

// StandardScale standardizes each column of rows to zero mean and unit variance.
// Columns with zero variance are centered only. The input is not modified.
func StandardScale(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}

	width := len(rows[0])
	means := make([]float64, width)
	stds := make([]float64, width)
	column := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, r := range rows {
			column[i] = r[j]
		}
		means[j] = Mean(column)
		stds[j] = StdDev(column)
	}

	scaled := make([][]float64, len(rows))
	for i, r := range rows {
		out := make([]float64, width)
		for j, v := range r {
			out[j] = v - means[j]
			if stds[j] > 0 {
				out[j] /= stds[j]
			}
		}
		scaled[i] = out
	}
	return scaled
}

// ModeInt returns the most frequent value. Ties resolve to the smallest value.
func ModeInt(values []int) int {
	if len(values) == 0 {
		return 0
	}

	freq := make(map[int]int)
	for _, v := range values {
		freq[v]++
	}

	mode, maxFreq := 0, 0
	for v, f := range freq {
		if f > maxFreq || (f == maxFreq && v < mode) {
			mode, maxFreq = v, f
		}
	}
	return mode
}

// Count is a label with its number of occurrences
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ValueCounts counts labels and orders them by count descending.
// Equal counts keep first-seen order.
func ValueCounts(labels []string) []Count {
	index := make(map[string]int)
	var counts []Count
	for _, l := range labels {
		i, ok := index[l]
		if !ok {
			i = len(counts)
			index[l] = i
			counts = append(counts, Count{Label: l})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// TopLabels returns up to n labels with the highest counts
func TopLabels(labels []string, n int) []string {
	counts := ValueCounts(labels)
	if n < len(counts) {
		counts = counts[:n]
	}

	top := make([]string, len(counts))
	for i, c := range counts {
		top[i] = c.Label
	}
	return top
}
