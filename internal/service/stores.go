package service

import (
	"context"

	"github.com/jengzang/patroliq-backend-go/internal/clustering"
	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/stats"
)

// IncidentStore is the incident query surface the services read from
type IncidentStore interface {
	List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error)
}

// AnalysisStore adds the aggregate queries used by the exploratory views
type AnalysisStore interface {
	IncidentStore
	Count(ctx context.Context, filter models.IncidentFilter) (int, error)
	CountByType(ctx context.Context, filter models.IncidentFilter) ([]stats.Count, error)
	CountByBucket(ctx context.Context, column string, filter models.IncidentFilter) (map[int]int, error)
	ArrestRates(ctx context.Context, filter models.IncidentFilter) (models.ArrestRate, error)
}

// ModelResolver resolves a registered model name to an assigner
type ModelResolver interface {
	Lookup(ctx context.Context, name string) (clustering.Assigner, error)
}

func assignLabels(ctx context.Context, resolver ModelResolver, model string, incidents []models.Incident) ([]int, error) {
	assigner, err := resolver.Lookup(ctx, model)
	if err != nil {
		return nil, err
	}
	return assigner.Assign(incidents)
}
