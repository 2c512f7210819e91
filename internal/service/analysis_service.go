package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/jengzang/patroliq-backend-go/internal/dataset"
	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/patrol"
	"github.com/jengzang/patroliq-backend-go/internal/repository"
	"github.com/jengzang/patroliq-backend-go/internal/spatial"
	"github.com/jengzang/patroliq-backend-go/internal/stats"
)

// Heatmap bin limits per axis
const (
	DefaultHeatmapBins = 50
	MaxHeatmapBins     = 500
)

// AnalysisService handles exploratory statistics over the incident table
type AnalysisService struct {
	store AnalysisStore
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(store AnalysisStore) *AnalysisService {
	return &AnalysisService{store: store}
}

// Summary returns type, hour, weekday and month distributions plus arrest rates
func (s *AnalysisService) Summary(ctx context.Context, filter models.IncidentFilter) (*models.CrimeSummary, error) {
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	byType, err := s.store.CountByType(ctx, filter)
	if err != nil {
		return nil, err
	}
	if byType == nil {
		byType = []stats.Count{}
	}

	summary := &models.CrimeSummary{TotalIncidents: total, ByType: byType}

	byHour, err := s.store.CountByBucket(ctx, repository.BucketHour, filter)
	if err != nil {
		return nil, err
	}
	for h := 0; h < 24; h++ {
		summary.ByHour = append(summary.ByHour, models.BucketCount{Bucket: h, Count: byHour[h]})
	}

	byDay, err := s.store.CountByBucket(ctx, repository.BucketDayOfWeek, filter)
	if err != nil {
		return nil, err
	}
	for d, name := range models.DayNames {
		summary.ByDayOfWeek = append(summary.ByDayOfWeek, models.BucketCount{Bucket: d, Label: name, Count: byDay[d]})
	}

	byMonth, err := s.store.CountByBucket(ctx, repository.BucketMonth, filter)
	if err != nil {
		return nil, err
	}
	for i, name := range models.MonthNames {
		summary.ByMonth = append(summary.ByMonth, models.BucketCount{Bucket: i + 1, Label: name, Count: byMonth[i+1]})
	}

	if summary.ArrestRate, err = s.store.ArrestRates(ctx, filter); err != nil {
		return nil, err
	}
	return summary, nil
}

// Severity scores each primary type, most severe first then most frequent
func (s *AnalysisService) Severity(ctx context.Context, filter models.IncidentFilter) ([]models.SeverityCount, error) {
	byType, err := s.store.CountByType(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]models.SeverityCount, len(byType))
	for i, c := range byType {
		out[i] = models.SeverityCount{PrimaryType: c.Label, Severity: dataset.Severity(c.Label), Count: c.Count}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity > out[j].Severity
	})
	return out, nil
}

// Heatmap bins incident locations on a bins x bins grid over their bounding box.
// Only non-empty bins are returned, ordered by latitude bin then longitude bin.
func (s *AnalysisService) Heatmap(ctx context.Context, q models.HeatmapQuery) (*models.HeatmapResponse, error) {
	bins := q.Bins
	if bins == 0 {
		bins = DefaultHeatmapBins
	}
	if bins < 0 || bins > MaxHeatmapBins {
		return nil, fmt.Errorf("%w: bins must be in [1, %d], got %d", patrol.ErrInvalidArgument, MaxHeatmapBins, bins)
	}

	incidents, err := s.store.List(ctx, q.IncidentFilter)
	if err != nil {
		return nil, err
	}

	resp := &models.HeatmapResponse{Points: []models.HeatmapPoint{}, Bins: bins}
	if len(incidents) == 0 {
		return resp, nil
	}

	box := spatial.BoundingBox(points(incidents))
	type cell struct{ lat, lng int }
	counts := make(map[cell]int)
	for _, inc := range incidents {
		c := cell{
			lat: spatial.BinIndex(inc.Latitude, box.MinLat, box.MaxLat, bins),
			lng: spatial.BinIndex(inc.Longitude, box.MinLon, box.MaxLon, bins),
		}
		counts[c]++
	}

	for c, n := range counts {
		resp.Points = append(resp.Points, models.HeatmapPoint{
			Lat:    spatial.BinCenter(c.lat, box.MinLat, box.MaxLat, bins),
			Lng:    spatial.BinCenter(c.lng, box.MinLon, box.MaxLon, bins),
			LatBin: c.lat,
			LngBin: c.lng,
			Value:  n,
		})
	}
	sort.Slice(resp.Points, func(i, j int) bool {
		if resp.Points[i].LatBin != resp.Points[j].LatBin {
			return resp.Points[i].LatBin < resp.Points[j].LatBin
		}
		return resp.Points[i].LngBin < resp.Points[j].LngBin
	})

	values := make([]float64, len(resp.Points))
	for i, p := range resp.Points {
		values[i] = float64(p.Value)
	}
	for i, v := range stats.MinMaxNormalize(values, 1e-6) {
		resp.Points[i].Intensity = v
	}
	resp.Count = len(resp.Points)
	resp.MaxValue = int(stats.Max(values))
	resp.MinValue = int(stats.Min(values))

	return resp, nil
}
