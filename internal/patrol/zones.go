package patrol

import (
	"fmt"
	"math"
	"sort"

	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/spatial"
	"github.com/jengzang/patroliq-backend-go/internal/stats"
)

// MinZoneRadiusMeters keeps small zones visible on the map
const MinZoneRadiusMeters = 150.0

type zoneAccumulator struct {
	label     int
	points    []spatial.Point
	types     []string
	districts []string
}

// BuildZones ranks non-noise geo clusters by incident count and returns the top limit.
// labels[i] is the geo cluster of incidents[i].
func BuildZones(incidents []models.Incident, labels []int, limit int, noiseLabel int) ([]models.PatrolZone, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: zone limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	if len(labels) != len(incidents) {
		return nil, fmt.Errorf("%w: %d labels for %d incidents", ErrInvalidInput, len(labels), len(incidents))
	}

	index := make(map[int]int)
	var accs []*zoneAccumulator
	for i, inc := range incidents {
		if labels[i] == noiseLabel {
			continue
		}
		if !isFinite(inc.Latitude) || !isFinite(inc.Longitude) {
			return nil, fmt.Errorf("%w: incident %d has non-finite coordinates", ErrInvalidInput, i)
		}

		j, ok := index[labels[i]]
		if !ok {
			j = len(accs)
			index[labels[i]] = j
			accs = append(accs, &zoneAccumulator{label: labels[i]})
		}
		acc := accs[j]
		acc.points = append(acc.points, spatial.Point{Lat: inc.Latitude, Lon: inc.Longitude})
		acc.types = append(acc.types, inc.PrimaryType)
		acc.districts = append(acc.districts, inc.District)
	}
	if len(accs) == 0 {
		return nil, fmt.Errorf("%w: no clustered incidents", ErrInvalidInput)
	}

	sort.SliceStable(accs, func(i, j int) bool {
		return len(accs[i].points) > len(accs[j].points)
	})
	if limit < len(accs) {
		accs = accs[:limit]
	}

	zones := make([]models.PatrolZone, len(accs))
	for i, acc := range accs {
		center := spatial.Centroid(acc.points)
		zones[i] = models.PatrolZone{
			Rank:         i + 1,
			GeoCluster:   acc.label,
			CrimeCount:   len(acc.points),
			TopCrime:     firstOrEmpty(stats.TopLabels(acc.types, 1)),
			District:     firstOrEmpty(stats.TopLabels(acc.districts, 1)),
			CenterLat:    center.Lat,
			CenterLon:    center.Lon,
			RadiusMeters: math.Max(MinZoneRadiusMeters, spatial.RadiusOfGyration(acc.points)),
		}
	}
	return zones, nil
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
