// Package clustering applies externally trained cluster models to incidents.
package clustering

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/jengzang/patroliq-backend-go/internal/dataset"
	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/stats"
)

// ErrMissingLabel is returned when stored labels are requested but an incident has none
var ErrMissingLabel = errors.New("incident has no stored cluster label")

// ErrInvalidFeature is returned when an incident cannot be turned into a feature vector
var ErrInvalidFeature = errors.New("invalid feature value")

// Assigner produces one cluster label per incident
type Assigner interface {
	Assign(incidents []models.Incident) ([]int, error)
}

// LabelKind selects which stored label an assigner reads
type LabelKind string

// Label kinds
const (
	LabelGeo      LabelKind = "geo"
	LabelTemporal LabelKind = "temporal"
)

// StoredLabels returns labels imported with the dataset
type StoredLabels struct {
	Kind LabelKind
}

// Assign implements Assigner
func (s StoredLabels) Assign(incidents []models.Incident) ([]int, error) {
	labels := make([]int, len(incidents))
	for i, inc := range incidents {
		var label *int
		switch s.Kind {
		case LabelGeo:
			label = inc.GeoCluster
		case LabelTemporal:
			label = inc.TempCluster
		default:
			return nil, fmt.Errorf("unknown label kind %q", s.Kind)
		}
		if label == nil {
			return nil, fmt.Errorf("%w: %s label missing on incident %d", ErrMissingLabel, s.Kind, inc.ID)
		}
		labels[i] = *label
	}
	return labels, nil
}

// FeatureSet names the columns a centroid model was trained on
type FeatureSet string

// Feature sets
const (
	FeaturesGeo      FeatureSet = "geo"      // latitude, longitude
	FeaturesTemporal FeatureSet = "temporal" // hour, day of week, month
	FeaturesProfile  FeatureSet = "profile"  // location, district, time and severity
)

var featureNames = map[FeatureSet][]string{
	FeaturesGeo:      {"latitude", "longitude"},
	FeaturesTemporal: {"hour", "day_of_week", "month"},
	FeaturesProfile:  {"latitude", "longitude", "district", "hour", "day_of_week", "month", "severity"},
}

// Width returns the number of columns in the feature set, 0 if unknown
func (f FeatureSet) Width() int {
	return len(featureNames[f])
}

// Names returns the column names of the feature set in matrix order
func (f FeatureSet) Names() []string {
	return append([]string(nil), featureNames[f]...)
}

// Features extracts the feature matrix for the incidents
func Features(incidents []models.Incident, set FeatureSet) ([][]float64, error) {
	rows := make([][]float64, len(incidents))
	for i, inc := range incidents {
		var row []float64
		switch set {
		case FeaturesGeo:
			row = []float64{inc.Latitude, inc.Longitude}
		case FeaturesTemporal:
			row = []float64{float64(inc.Hour), float64(inc.DayOfWeek), float64(inc.Month)}
		case FeaturesProfile:
			district, err := strconv.Atoi(inc.District)
			if err != nil {
				return nil, fmt.Errorf("%w: incident %d has non-numeric district %q", ErrInvalidFeature, inc.ID, inc.District)
			}
			row = []float64{
				inc.Latitude, inc.Longitude, float64(district),
				float64(inc.Hour), float64(inc.DayOfWeek), float64(inc.Month),
				float64(dataset.Severity(inc.PrimaryType)),
			}
		default:
			return nil, fmt.Errorf("unknown feature set %q", set)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: incident %d has non-finite %s feature", ErrInvalidFeature, inc.ID, set)
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// CentroidModel assigns each incident to its nearest centroid (KMeans prediction).
// With Scale set, features are standardized on the batch being assigned.
type CentroidModel struct {
	Features  FeatureSet
	Scale     bool
	Centroids [][]float64
}

// Validate checks the centroids against the feature set
func (m CentroidModel) Validate() error {
	width := m.Features.Width()
	if width == 0 {
		return fmt.Errorf("unknown feature set %q", m.Features)
	}
	if len(m.Centroids) == 0 {
		return errors.New("centroid model has no centroids")
	}
	for i, c := range m.Centroids {
		if len(c) != width {
			return fmt.Errorf("centroid %d has %d dimensions, %s features need %d", i, len(c), m.Features, width)
		}
	}
	return nil
}

// Assign implements Assigner
func (m CentroidModel) Assign(incidents []models.Incident) ([]int, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	rows, err := Features(incidents, m.Features)
	if err != nil {
		return nil, err
	}
	if m.Scale {
		rows = stats.StandardScale(rows)
	}

	labels := make([]int, len(rows))
	for i, row := range rows {
		labels[i] = nearest(row, m.Centroids)
	}
	return labels, nil
}

func nearest(row []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centroids {
		var d float64
		for j, v := range row {
			diff := v - c[j]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
