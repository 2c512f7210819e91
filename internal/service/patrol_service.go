package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jengzang/patroliq-backend-go/internal/config"
	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/observability"
	"github.com/jengzang/patroliq-backend-go/internal/patrol"
	"github.com/jengzang/patroliq-backend-go/internal/spatial"
)

// DefaultZoneLimit is the number of patrol zones returned when no limit is given
const DefaultZoneLimit = 5

// PatrolConfig names the models and defaults used for patrol recommendations
type PatrolConfig struct {
	GeoModel  string
	TempModel string
	Hotspot   config.HotspotConfig
}

// PatrolService handles hotspot scoring and patrol zone planning
type PatrolService struct {
	incidents IncidentStore
	models    ModelResolver
	cfg       PatrolConfig
	metrics   *observability.Metrics
}

// NewPatrolService creates a new patrol service
func NewPatrolService(incidents IncidentStore, resolver ModelResolver, cfg PatrolConfig, metrics *observability.Metrics) *PatrolService {
	return &PatrolService{incidents: incidents, models: resolver, cfg: cfg, metrics: metrics}
}

// Hotspots ranks (geo, temporal) cluster cells by patrol risk
func (s *PatrolService) Hotspots(ctx context.Context, q models.HotspotQuery) (*models.HotspotResponse, error) {
	topN := q.TopN
	if topN == 0 {
		topN = s.cfg.Hotspot.TopN
	}
	if topN < 0 {
		return nil, fmt.Errorf("%w: topN must be positive, got %d", patrol.ErrInvalidArgument, topN)
	}

	opts := patrol.DefaultOptions()
	exclude := s.cfg.Hotspot.ExcludeNoise
	if q.ExcludeNoise != nil {
		exclude = *q.ExcludeNoise
	}
	if exclude {
		opts.Noise = patrol.NoiseExclude
	}

	incidents, err := s.load(ctx, q.IncidentFilter)
	if err != nil {
		return nil, err
	}

	cells, err := s.score(ctx, incidents, opts)
	if err != nil {
		s.metrics.HotspotFailed()
		return nil, err
	}
	s.metrics.HotspotComputed(len(incidents), len(cells))

	top := cells
	if topN < len(top) {
		top = top[:topN]
	}

	center := spatial.Centroid(points(incidents))
	slog.Debug("hotspots computed", "records", len(incidents), "cells", len(cells), "top", len(top))

	return &models.HotspotResponse{
		Hotspots:     top,
		Count:        len(top),
		TotalCells:   len(cells),
		RecordCount:  len(incidents),
		ExcludeNoise: exclude,
		GeoModel:     s.cfg.GeoModel,
		TempModel:    s.cfg.TempModel,
		CenterLat:    center.Lat,
		CenterLon:    center.Lon,
	}, nil
}

func (s *PatrolService) score(ctx context.Context, incidents []models.Incident, opts patrol.Options) ([]models.ClusterCell, error) {
	geo, err := assignLabels(ctx, s.models, s.cfg.GeoModel, incidents)
	if err != nil {
		return nil, fmt.Errorf("geo clusters: %w", err)
	}
	temp, err := assignLabels(ctx, s.models, s.cfg.TempModel, incidents)
	if err != nil {
		return nil, fmt.Errorf("temporal clusters: %w", err)
	}

	records, err := patrol.RecordsFromIncidents(incidents, geo, temp)
	if err != nil {
		return nil, err
	}
	return patrol.ScoreCells(records, opts)
}

// Zones ranks the non-noise geo clusters as patrol zones
func (s *PatrolService) Zones(ctx context.Context, q models.ZoneQuery) ([]models.PatrolZone, error) {
	limit := q.Limit
	if limit == 0 {
		limit = DefaultZoneLimit
	}

	incidents, err := s.load(ctx, q.IncidentFilter)
	if err != nil {
		return nil, err
	}

	labels, err := assignLabels(ctx, s.models, s.cfg.GeoModel, incidents)
	if err != nil {
		return nil, fmt.Errorf("geo clusters: %w", err)
	}

	return patrol.BuildZones(incidents, labels, limit, models.NoiseCluster)
}

// Briefing renders the operational briefing for the top patrol zones
func (s *PatrolService) Briefing(ctx context.Context, q models.ZoneQuery) (*models.BriefingResponse, error) {
	zones, err := s.Zones(ctx, q)
	if err != nil {
		return nil, err
	}
	return &models.BriefingResponse{Zones: zones, Markdown: patrol.Briefing(zones)}, nil
}

// load applies the configured sample size when the query leaves it at zero
func (s *PatrolService) load(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error) {
	switch {
	case filter.SampleSize == 0:
		filter.SampleSize = s.cfg.Hotspot.SampleSize
		if filter.SampleSeed == 0 {
			filter.SampleSeed = s.cfg.Hotspot.SampleSeed
		}
	case filter.SampleSize == models.SampleAll:
		filter.SampleSize = 0
	case filter.SampleSize < 0:
		return nil, fmt.Errorf("%w: sample must be positive, 0 or %d", patrol.ErrInvalidArgument, models.SampleAll)
	}
	return s.incidents.List(ctx, filter)
}

func points(incidents []models.Incident) []spatial.Point {
	pts := make([]spatial.Point, len(incidents))
	for i, inc := range incidents {
		pts[i] = spatial.Point{Lat: inc.Latitude, Lon: inc.Longitude}
	}
	return pts
}
