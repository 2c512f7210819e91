package service

import (
	"context"
	"fmt"

	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/temporal"
)

// TemporalService handles temporal crime pattern summaries
type TemporalService struct {
	incidents IncidentStore
	models    ModelResolver
	tempModel string
}

// NewTemporalService creates a new temporal service
func NewTemporalService(incidents IncidentStore, resolver ModelResolver, tempModel string) *TemporalService {
	return &TemporalService{incidents: incidents, models: resolver, tempModel: tempModel}
}

// Clusters summarizes each temporal cluster
func (s *TemporalService) Clusters(ctx context.Context, filter models.IncidentFilter) ([]models.TimeClusterSummary, error) {
	incidents, labels, err := s.labelled(ctx, filter)
	if err != nil {
		return nil, err
	}
	return temporal.Summarize(incidents, labels)
}

// Overview returns peak hours, weekend split, top season and the hour-by-cluster table
func (s *TemporalService) Overview(ctx context.Context, filter models.IncidentFilter) (*models.TemporalOverview, error) {
	incidents, labels, err := s.labelled(ctx, filter)
	if err != nil {
		return nil, err
	}
	return temporal.Overview(incidents, labels)
}

func (s *TemporalService) labelled(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, []int, error) {
	incidents, err := s.incidents.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	labels, err := assignLabels(ctx, s.models, s.tempModel, incidents)
	if err != nil {
		return nil, nil, fmt.Errorf("temporal clusters: %w", err)
	}
	return incidents, labels, nil
}
