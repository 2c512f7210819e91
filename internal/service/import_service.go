package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jengzang/patroliq-backend-go/internal/dataset"
	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/observability"
	"github.com/jengzang/patroliq-backend-go/internal/spatial"
)

// IncidentWriter is the write side of the incident store
type IncidentWriter interface {
	InsertBatch(ctx context.Context, incidents []models.Incident) (int, error)
	ReplaceAll(ctx context.Context, incidents []models.Incident) (int, error)
}

// ImportService loads the cleaned crime table into the incident store
type ImportService struct {
	store   IncidentWriter
	metrics *observability.Metrics
}

// NewImportService creates a new import service
func NewImportService(store IncidentWriter, metrics *observability.Metrics) *ImportService {
	return &ImportService{store: store, metrics: metrics}
}

// Import parses r as CSV and stores every row. With replace set, existing
// incidents are swapped out in the same transaction. Nothing is written,
// and nothing is removed, if any row fails.
func (s *ImportService) Import(ctx context.Context, r io.Reader, replace bool) (int, error) {
	incidents, err := dataset.ReadCSV(r)
	if err != nil {
		return 0, err
	}

	for i, inc := range incidents {
		if !spatial.ValidCoordinate(inc.Latitude, inc.Longitude) {
			// header is line 1
			return 0, fmt.Errorf("%w: line %d: coordinate (%g, %g) out of range",
				dataset.ErrInvalidInput, i+2, inc.Latitude, inc.Longitude)
		}
	}

	write := s.store.InsertBatch
	if replace {
		write = s.store.ReplaceAll
	}

	n, err := write(ctx, incidents)
	if err != nil {
		return 0, err
	}

	s.metrics.IncidentsImported(n)
	slog.Info("incidents imported", "rows", n, "replace", replace)
	return n, nil
}
