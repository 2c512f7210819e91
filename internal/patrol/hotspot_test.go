package patrol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/patroliq-backend-go/internal/models"
)

func rec(geo, temp int, lat, lon float64) models.IncidentRecord {
	return models.IncidentRecord{Latitude: lat, Longitude: lon, GeoCluster: geo, TempCluster: temp}
}

func mixedRecords() []models.IncidentRecord {
	return []models.IncidentRecord{
		rec(0, 0, 41.80, -87.60),
		rec(0, 0, 41.82, -87.62),
		rec(0, 1, 41.81, -87.61),
		rec(1, 0, 41.90, -87.70),
		rec(1, 1, 41.91, -87.71),
		rec(1, 1, 41.92, -87.72),
		rec(1, 1, 41.93, -87.73),
		rec(-1, 2, 41.70, -87.50),
		rec(2, 2, 41.75, -87.55),
	}
}

func TestComputeHotspots_TwoCellScenario(t *testing.T) {
	records := []models.IncidentRecord{
		rec(0, 0, 41.8, -87.6),
		rec(0, 0, 41.8, -87.6),
		rec(1, 0, 41.9, -87.7),
	}

	cells, err := ComputeHotspots(records, 2, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, cells, 2)

	assert.Equal(t, 0, cells[0].GeoCluster)
	assert.Equal(t, 0, cells[0].TempCluster)
	assert.Equal(t, 2, cells[0].CrimeCount)
	assert.Equal(t, 1, cells[1].GeoCluster)
	assert.Equal(t, 1, cells[1].CrimeCount)

	assert.Equal(t, cells[0].TempRisk, cells[1].TempRisk)
	assert.Greater(t, cells[0].GeoRisk, cells[1].GeoRisk)
	assert.Greater(t, cells[0].FinalRisk, cells[1].FinalRisk)

	assert.InDelta(t, 41.8, cells[0].MeanLatitude, 1e-12)
	assert.InDelta(t, -87.6, cells[0].MeanLongitude, 1e-12)
}

func TestComputeHotspots_SingleCell(t *testing.T) {
	records := []models.IncidentRecord{
		rec(3, 7, 41.8, -87.6),
		rec(3, 7, 41.9, -87.7),
	}

	cells, err := ComputeHotspots(records, 5, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, cells, 1)

	assert.Equal(t, 0.0, cells[0].FinalRisk)
	assert.False(t, math.IsNaN(cells[0].FinalRisk))
	assert.InDelta(t, 41.85, cells[0].MeanLatitude, 1e-9)
}

func TestComputeHotspots_TopNBoundary(t *testing.T) {
	records := mixedRecords()
	all, err := ScoreCells(records, DefaultOptions())
	require.NoError(t, err)

	tests := []struct {
		name string
		topN int
		want int
	}{
		{name: "fewer than cells", topN: 2, want: 2},
		{name: "exactly cells", topN: len(all), want: len(all)},
		{name: "more than cells", topN: len(all) + 10, want: len(all)},
		{name: "one", topN: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells, err := ComputeHotspots(records, tt.topN, DefaultOptions())
			require.NoError(t, err)
			assert.Len(t, cells, tt.want)
			assert.Equal(t, all[:tt.want], cells)
		})
	}
}

func TestComputeHotspots_Errors(t *testing.T) {
	t.Run("empty records", func(t *testing.T) {
		_, err := ComputeHotspots(nil, 5, DefaultOptions())
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("non-positive topN", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			_, err := ComputeHotspots(mixedRecords(), n, DefaultOptions())
			assert.ErrorIs(t, err, ErrInvalidArgument)
		}
	})

	t.Run("non-finite coordinates", func(t *testing.T) {
		for _, bad := range []models.IncidentRecord{
			rec(0, 0, math.NaN(), -87.6),
			rec(0, 0, 41.8, math.Inf(1)),
			rec(0, 0, math.Inf(-1), -87.6),
		} {
			records := append(mixedRecords(), bad)
			_, err := ComputeHotspots(records, 3, DefaultOptions())
			assert.ErrorIs(t, err, ErrInvalidInput)
		}
	})

	t.Run("bad options", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Epsilon = 0
		_, err := ComputeHotspots(mixedRecords(), 3, opts)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		opts = DefaultOptions()
		opts.GeoWeight = -0.1
		_, err = ComputeHotspots(mixedRecords(), 3, opts)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("all noise excluded", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Noise = NoiseExclude
		_, err := ComputeHotspots([]models.IncidentRecord{rec(-1, 0, 41.8, -87.6)}, 3, opts)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestScoreCells_CountsSumToRecords(t *testing.T) {
	records := mixedRecords()
	cells, err := ScoreCells(records, DefaultOptions())
	require.NoError(t, err)

	total := 0
	for _, c := range cells {
		assert.GreaterOrEqual(t, c.CrimeCount, 1)
		total += c.CrimeCount
	}
	assert.Equal(t, len(records), total)
}

func TestScoreCells_RiskBounds(t *testing.T) {
	cells, err := ScoreCells(mixedRecords(), DefaultOptions())
	require.NoError(t, err)

	minCount, maxCount := cells[0].CrimeCount, cells[0].CrimeCount
	for _, c := range cells {
		assert.GreaterOrEqual(t, c.GeoRisk, 0.0)
		assert.LessOrEqual(t, c.GeoRisk, 1.0)
		assert.GreaterOrEqual(t, c.TempRisk, 0.0)
		assert.LessOrEqual(t, c.TempRisk, 1.0)
		assert.InDelta(t, 0.6*c.GeoRisk+0.4*c.TempRisk, c.FinalRisk, 1e-12)
		if c.CrimeCount < minCount {
			minCount = c.CrimeCount
		}
		if c.CrimeCount > maxCount {
			maxCount = c.CrimeCount
		}
	}

	for _, c := range cells {
		if c.CrimeCount == minCount {
			assert.Equal(t, 0.0, c.GeoRisk)
		}
		if c.CrimeCount == maxCount {
			assert.InDelta(t, 1.0, c.GeoRisk, 1e-5)
		}
	}
}

func TestScoreCells_TemporalRiskIsSharedPerTemporalCluster(t *testing.T) {
	cells, err := ScoreCells(mixedRecords(), DefaultOptions())
	require.NoError(t, err)

	// temp 0: 3 records, temp 1: 4 records, temp 2: 2 records
	byTemp := map[int]float64{}
	for _, c := range cells {
		if prev, ok := byTemp[c.TempCluster]; ok {
			assert.Equal(t, prev, c.TempRisk)
		}
		byTemp[c.TempCluster] = c.TempRisk
	}
	assert.Equal(t, 0.0, byTemp[2])
	assert.InDelta(t, 1.0, byTemp[1], 1e-5)
	assert.InDelta(t, 0.5, byTemp[0], 1e-5)
}

func TestScoreCells_EqualCountsGiveZeroGeoRisk(t *testing.T) {
	records := []models.IncidentRecord{
		rec(0, 0, 41.8, -87.6),
		rec(1, 1, 41.9, -87.7),
		rec(2, 0, 42.0, -87.8),
	}

	cells, err := ScoreCells(records, DefaultOptions())
	require.NoError(t, err)
	for _, c := range cells {
		assert.Equal(t, 0.0, c.GeoRisk)
		assert.False(t, math.IsNaN(c.FinalRisk))
	}
}

func TestScoreCells_TiesKeepFirstSeenOrder(t *testing.T) {
	records := []models.IncidentRecord{
		rec(5, 0, 41.8, -87.6),
		rec(3, 0, 41.9, -87.7),
		rec(9, 0, 42.0, -87.8),
	}

	cells, err := ScoreCells(records, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.Equal(t, 5, cells[0].GeoCluster)
	assert.Equal(t, 3, cells[1].GeoCluster)
	assert.Equal(t, 9, cells[2].GeoCluster)
}

func TestScoreCells_Idempotent(t *testing.T) {
	first, err := ScoreCells(mixedRecords(), DefaultOptions())
	require.NoError(t, err)
	second, err := ScoreCells(mixedRecords(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScoreCells_MonotonicInCellCount(t *testing.T) {
	base := mixedRecords()
	riskOf := func(records []models.IncidentRecord, geo, temp int) float64 {
		cells, err := ScoreCells(records, DefaultOptions())
		require.NoError(t, err)
		for _, c := range cells {
			if c.GeoCluster == geo && c.TempCluster == temp {
				return c.FinalRisk
			}
		}
		t.Fatalf("cell (%d,%d) not found", geo, temp)
		return 0
	}

	for _, key := range [][2]int{{0, 1}, {0, 0}, {2, 2}, {1, 1}} {
		records := append([]models.IncidentRecord(nil), base...)
		prev := riskOf(records, key[0], key[1])
		for i := 0; i < 4; i++ {
			records = append(records, rec(key[0], key[1], 41.85, -87.65))
			next := riskOf(records, key[0], key[1])
			assert.GreaterOrEqual(t, next, prev, "cell %v after %d extra records", key, i+1)
			prev = next
		}
	}
}

func TestScoreCells_CentroidWithinMemberBounds(t *testing.T) {
	records := mixedRecords()
	cells, err := ScoreCells(records, DefaultOptions())
	require.NoError(t, err)

	for _, c := range cells {
		minLat, maxLat := math.Inf(1), math.Inf(-1)
		minLon, maxLon := math.Inf(1), math.Inf(-1)
		for _, r := range records {
			if r.GeoCluster != c.GeoCluster || r.TempCluster != c.TempCluster {
				continue
			}
			minLat, maxLat = math.Min(minLat, r.Latitude), math.Max(maxLat, r.Latitude)
			minLon, maxLon = math.Min(minLon, r.Longitude), math.Max(maxLon, r.Longitude)
		}
		assert.GreaterOrEqual(t, c.MeanLatitude, minLat)
		assert.LessOrEqual(t, c.MeanLatitude, maxLat)
		assert.GreaterOrEqual(t, c.MeanLongitude, minLon)
		assert.LessOrEqual(t, c.MeanLongitude, maxLon)
	}
}

func TestScoreCells_NoisePolicy(t *testing.T) {
	records := []models.IncidentRecord{
		rec(-1, 0, 41.7, -87.5),
		rec(-1, 0, 41.7, -87.5),
		rec(-1, 0, 41.7, -87.5),
		rec(0, 0, 41.8, -87.6),
		rec(1, 1, 41.9, -87.7),
	}

	included, err := ScoreCells(records, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, included, 3)
	assert.Equal(t, -1, included[0].GeoCluster)

	opts := DefaultOptions()
	opts.Noise = NoiseExclude
	excluded, err := ScoreCells(records, opts)
	require.NoError(t, err)
	assert.Len(t, excluded, 2)
	for _, c := range excluded {
		assert.NotEqual(t, -1, c.GeoCluster)
	}
}

func TestScoreCells_CustomWeights(t *testing.T) {
	opts := DefaultOptions()
	opts.GeoWeight, opts.TempWeight = 1, 0

	cells, err := ScoreCells(mixedRecords(), opts)
	require.NoError(t, err)
	for _, c := range cells {
		assert.Equal(t, c.GeoRisk, c.FinalRisk)
	}
}

func TestRecordsFromColumns(t *testing.T) {
	records, err := RecordsFromColumns(
		[]float64{41.8, 41.9},
		[]float64{-87.6, -87.7},
		[]int{0, 1},
		[]int{2, 3},
	)
	require.NoError(t, err)
	assert.Equal(t, []models.IncidentRecord{rec(0, 2, 41.8, -87.6), rec(1, 3, 41.9, -87.7)}, records)

	_, err = RecordsFromColumns([]float64{41.8, 41.9}, []float64{-87.6}, []int{0, 1}, []int{2, 3})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = RecordsFromColumns([]float64{41.8}, []float64{-87.6}, []int{0}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordsFromIncidents(t *testing.T) {
	incidents := []models.Incident{
		{Latitude: 41.8, Longitude: -87.6},
		{Latitude: 41.9, Longitude: -87.7},
	}

	records, err := RecordsFromIncidents(incidents, []int{4, 5}, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 5, records[1].GeoCluster)
	assert.Equal(t, 41.9, records[1].Latitude)

	_, err = RecordsFromIncidents(incidents, []int{4}, []int{0, 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
