// Package patrol ranks (geo cluster, temporal cluster) cells by patrol risk
// and summarizes geo clusters into patrol zones.
package patrol

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/stats"
)

var (
	// ErrInvalidInput is returned when the record set cannot be scored
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidArgument is returned for out-of-range parameters
	ErrInvalidArgument = errors.New("invalid argument")
)

// NoisePolicy decides whether noise-labelled incidents take part in scoring
type NoisePolicy int

const (
	// NoiseInclude scores unclustered incidents as a cell of their own
	NoiseInclude NoisePolicy = iota
	// NoiseExclude drops unclustered incidents before grouping
	NoiseExclude
)

// Options controls the risk blend
type Options struct {
	GeoWeight  float64
	TempWeight float64
	Epsilon    float64 // added to the min-max denominator
	Noise      NoisePolicy
	NoiseLabel int
}

// DefaultOptions returns the 0.6/0.4 blend with noise included
func DefaultOptions() Options {
	return Options{
		GeoWeight:  0.6,
		TempWeight: 0.4,
		Epsilon:    1e-6,
		Noise:      NoiseInclude,
		NoiseLabel: models.NoiseCluster,
	}
}

func (o Options) validate() error {
	if !isFinite(o.GeoWeight) || o.GeoWeight < 0 {
		return fmt.Errorf("%w: geo weight must be a non-negative number, got %v", ErrInvalidArgument, o.GeoWeight)
	}
	if !isFinite(o.TempWeight) || o.TempWeight < 0 {
		return fmt.Errorf("%w: temporal weight must be a non-negative number, got %v", ErrInvalidArgument, o.TempWeight)
	}
	if !isFinite(o.Epsilon) || o.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be positive, got %v", ErrInvalidArgument, o.Epsilon)
	}
	return nil
}

type cellKey struct {
	geo  int
	temp int
}

type cellAccumulator struct {
	key    cellKey
	count  int
	sumLat float64
	sumLon float64
}

// ComputeHotspots returns the topN highest-risk cells.
// Fewer cells than topN is not an error; all of them are returned.
func ComputeHotspots(records []models.IncidentRecord, topN int, opts Options) ([]models.ClusterCell, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: topN must be positive, got %d", ErrInvalidArgument, topN)
	}

	cells, err := ScoreCells(records, opts)
	if err != nil {
		return nil, err
	}

	if topN < len(cells) {
		cells = cells[:topN]
	}
	return cells, nil
}

// ScoreCells groups records into cells and returns every cell ranked by final risk.
// Cells with equal risk keep the order in which they were first seen.
func ScoreCells(records []models.IncidentRecord, opts Options) ([]models.ClusterCell, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no incident records", ErrInvalidInput)
	}

	index := make(map[cellKey]int)
	var accs []cellAccumulator
	for i, r := range records {
		if !isFinite(r.Latitude) || !isFinite(r.Longitude) {
			return nil, fmt.Errorf("%w: record %d has non-finite coordinates (%v, %v)",
				ErrInvalidInput, i, r.Latitude, r.Longitude)
		}
		if opts.Noise == NoiseExclude && r.GeoCluster == opts.NoiseLabel {
			continue
		}

		key := cellKey{geo: r.GeoCluster, temp: r.TempCluster}
		j, ok := index[key]
		if !ok {
			j = len(accs)
			index[key] = j
			accs = append(accs, cellAccumulator{key: key})
		}
		accs[j].count++
		accs[j].sumLat += r.Latitude
		accs[j].sumLon += r.Longitude
	}
	if len(accs) == 0 {
		return nil, fmt.Errorf("%w: every record is geo-cluster noise", ErrInvalidInput)
	}

	counts := make([]float64, len(accs))
	tempIndex := make(map[int]int)
	var tempTotals []float64
	for i, a := range accs {
		counts[i] = float64(a.count)

		t, ok := tempIndex[a.key.temp]
		if !ok {
			t = len(tempTotals)
			tempIndex[a.key.temp] = t
			tempTotals = append(tempTotals, 0)
		}
		tempTotals[t] += float64(a.count)
	}

	geoRisk := stats.MinMaxNormalize(counts, opts.Epsilon)
	tempRisk := stats.MinMaxNormalize(tempTotals, opts.Epsilon)

	cells := make([]models.ClusterCell, len(accs))
	for i, a := range accs {
		tr := tempRisk[tempIndex[a.key.temp]]
		cells[i] = models.ClusterCell{
			GeoCluster:    a.key.geo,
			TempCluster:   a.key.temp,
			CrimeCount:    a.count,
			MeanLatitude:  a.sumLat / float64(a.count),
			MeanLongitude: a.sumLon / float64(a.count),
			GeoRisk:       geoRisk[i],
			TempRisk:      tr,
			FinalRisk:     opts.GeoWeight*geoRisk[i] + opts.TempWeight*tr,
		}
	}

	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].FinalRisk > cells[j].FinalRisk
	})
	return cells, nil
}

// RecordsFromColumns zips a columnar table into records.
// Columns of unequal length mean a column is missing values.
func RecordsFromColumns(lat, lon []float64, geo, temp []int) ([]models.IncidentRecord, error) {
	n := len(lat)
	if len(lon) != n || len(geo) != n || len(temp) != n {
		return nil, fmt.Errorf("%w: column lengths differ (latitude=%d longitude=%d geo_cluster=%d temp_cluster=%d)",
			ErrInvalidInput, len(lat), len(lon), len(geo), len(temp))
	}

	records := make([]models.IncidentRecord, n)
	for i := range records {
		records[i] = models.IncidentRecord{
			Latitude:    lat[i],
			Longitude:   lon[i],
			GeoCluster:  geo[i],
			TempCluster: temp[i],
		}
	}
	return records, nil
}

// RecordsFromIncidents pairs incidents with externally assigned labels
func RecordsFromIncidents(incidents []models.Incident, geo, temp []int) ([]models.IncidentRecord, error) {
	lat := make([]float64, len(incidents))
	lon := make([]float64, len(incidents))
	for i, inc := range incidents {
		lat[i] = inc.Latitude
		lon[i] = inc.Longitude
	}
	return RecordsFromColumns(lat, lon, geo, temp)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
