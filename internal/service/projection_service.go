package service

import (
	"context"
	"fmt"
	"math"

	"github.com/jengzang/patroliq-backend-go/internal/clustering"
	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/patrol"
	"github.com/jengzang/patroliq-backend-go/internal/temporal"
)

// Projection defaults
const (
	DefaultProjectionSample = 20000
	DefaultProjectionSeed   = 42
	DefaultProjectionPoints = 8000
	MaxProjectionPoints     = 20000

	leadingComponents = 3
)

// ProjectorResolver resolves a registered model name to a pca projection
type ProjectorResolver interface {
	LookupProjector(ctx context.Context, name string) (clustering.PCAModel, error)
}

// ProjectionService applies the registered PCA model to incidents
type ProjectionService struct {
	incidents IncidentStore
	resolver  ProjectorResolver
	model     string
}

// NewProjectionService creates a new projection service
func NewProjectionService(incidents IncidentStore, resolver ProjectorResolver, model string) *ProjectionService {
	return &ProjectionService{incidents: incidents, resolver: resolver, model: model}
}

// Projection returns the scree series, feature loadings and projected points
func (s *ProjectionService) Projection(ctx context.Context, q models.ProjectionQuery) (*models.ProjectionResponse, error) {
	points := q.Points
	if points == 0 {
		points = DefaultProjectionPoints
	}
	if points < 0 || points > MaxProjectionPoints {
		return nil, fmt.Errorf("%w: points must be between 1 and %d", patrol.ErrInvalidArgument, MaxProjectionPoints)
	}

	filter := q.IncidentFilter
	switch {
	case filter.SampleSize == 0:
		filter.SampleSize = DefaultProjectionSample
		if filter.SampleSeed == 0 {
			filter.SampleSeed = DefaultProjectionSeed
		}
	case filter.SampleSize == models.SampleAll:
		filter.SampleSize = 0
	case filter.SampleSize < 0:
		return nil, fmt.Errorf("%w: sample must be positive, 0 or %d", patrol.ErrInvalidArgument, models.SampleAll)
	}

	model, err := s.resolver.LookupProjector(ctx, s.model)
	if err != nil {
		return nil, err
	}

	incidents, err := s.incidents.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(incidents) == 0 {
		return nil, fmt.Errorf("%w: no incidents match the filter", patrol.ErrInvalidInput)
	}

	scores, err := model.Project(incidents)
	if err != nil {
		return nil, err
	}

	variance := model.VariancePercent()
	var leading float64
	for i := 0; i < len(variance) && i < leadingComponents; i++ {
		leading += variance[i]
	}

	if points > len(incidents) {
		points = len(incidents)
	}
	projected := make([]models.ProjectedPoint, points)
	for i := range projected {
		inc := incidents[i]
		comps := scores[i]
		if len(comps) > leadingComponents {
			comps = comps[:leadingComponents]
		}
		projected[i] = models.ProjectedPoint{
			ID:          inc.ID,
			PrimaryType: inc.PrimaryType,
			District:    inc.District,
			Season:      temporal.SeasonForMonth(inc.Month),
			Components:  comps,
		}
	}

	return &models.ProjectionResponse{
		Model:             s.model,
		RecordCount:       len(incidents),
		Features:          model.Features.Names(),
		ExplainedVariance: variance,
		LeadingVariance:   math.Round(leading*100) / 100,
		Loadings:          model.Loadings(leadingComponents),
		Points:            projected,
	}, nil
}
