// Package registry resolves registered cluster models and browses tracked experiments.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jengzang/patroliq-backend-go/internal/clustering"
	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/observability"
	"github.com/jengzang/patroliq-backend-go/internal/repository"
)

// Sentinel errors returned by the registry. Handlers map them onto HTTP statuses.
var (
	ErrModelNotFound      = errors.New("model not found")
	ErrExperimentNotFound = errors.New("experiment not found")
	ErrRunNotFound        = errors.New("run not found")
	ErrExperimentExists   = errors.New("experiment already exists")
	ErrVersionConflict    = errors.New("model version already exists")
	ErrInvalidPayload     = errors.New("invalid model payload")
	ErrInvalidRequest     = errors.New("invalid request")
)

// Registry is the model registry and experiment tracking store
type Registry struct {
	experiments *repository.ExperimentRepository
	models      *repository.ModelRepository
	metrics     *observability.Metrics
}

// New creates a registry over db. metrics may be nil.
func New(db *sql.DB, metrics *observability.Metrics) *Registry {
	return &Registry{
		experiments: repository.NewExperimentRepository(db),
		models:      repository.NewModelRepository(db),
		metrics:     metrics,
	}
}

// Lookup resolves the highest version of a registered model to an assigner
func (r *Registry) Lookup(ctx context.Context, name string) (clustering.Assigner, error) {
	v, err := r.models.LatestVersion(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		r.metrics.ModelLookup(name, false)
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	r.metrics.ModelLookup(name, true)

	assigner, err := Decode(v.Payload)
	if err != nil {
		return nil, fmt.Errorf("model %s version %d: %w", name, v.Version, err)
	}
	slog.Debug("resolved model", "model", name, "version", v.Version, "stage", v.Stage)
	return assigner, nil
}

// LookupProjector resolves the highest version of a registered pca model
func (r *Registry) LookupProjector(ctx context.Context, name string) (clustering.PCAModel, error) {
	v, err := r.models.LatestVersion(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		r.metrics.ModelLookup(name, false)
		return clustering.PCAModel{}, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if err != nil {
		return clustering.PCAModel{}, err
	}
	r.metrics.ModelLookup(name, true)

	m, err := DecodeProjector(v.Payload)
	if err != nil {
		return clustering.PCAModel{}, fmt.Errorf("model %s version %d: %w", name, v.Version, err)
	}
	return m, nil
}

// GetExperimentByName returns the named experiment or ErrExperimentNotFound
func (r *Registry) GetExperimentByName(ctx context.Context, name string) (*models.Experiment, error) {
	exp, err := r.experiments.GetExperimentByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrExperimentNotFound, name)
	}
	return exp, err
}

// SearchRuns lists an experiment's runs, newest first
func (r *Registry) SearchRuns(ctx context.Context, experimentID int64) ([]models.Run, error) {
	return r.experiments.SearchRuns(ctx, experimentID)
}

// RunsForExperiment resolves the experiment by name and lists its runs
func (r *Registry) RunsForExperiment(ctx context.Context, name string) ([]models.Run, error) {
	exp, err := r.GetExperimentByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.SearchRuns(ctx, exp.ID)
}

// GetRun returns a run with its params, metrics and artifacts
func (r *Registry) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	run, err := r.experiments.GetRun(ctx, runID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// ListRegisteredModels lists every registered model with its latest version
func (r *Registry) ListRegisteredModels(ctx context.Context) ([]models.RegisteredModel, error) {
	return r.models.ListModels(ctx)
}

// LatestVersions lists a model's versions, highest first
func (r *Registry) LatestVersions(ctx context.Context, name string) ([]models.ModelVersion, error) {
	versions, err := r.models.ListVersions(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	return versions, err
}

// CreateExperiment creates an experiment; duplicate names are ErrExperimentExists
func (r *Registry) CreateExperiment(ctx context.Context, name string) (*models.Experiment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: experiment name is empty", ErrInvalidRequest)
	}

	exp, err := r.experiments.CreateExperiment(ctx, name)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, fmt.Errorf("%w: %s", ErrExperimentExists, name)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("experiment created", "experiment", name, "id", exp.ID)
	return exp, nil
}

// LogRun records a finished (or running) training run under an experiment
func (r *Registry) LogRun(ctx context.Context, experimentName string, req models.LogRunRequest) (*models.Run, error) {
	exp, err := r.GetExperimentByName(ctx, experimentName)
	if err != nil {
		return nil, err
	}

	switch req.Status {
	case "", models.RunStatusRunning, models.RunStatusFinished, models.RunStatusFailed:
	default:
		return nil, fmt.Errorf("%w: unknown run status %q", ErrInvalidRequest, req.Status)
	}
	if req.StartTime != nil && req.EndTime != nil && req.EndTime.Before(*req.StartTime) {
		return nil, fmt.Errorf("%w: end_time before start_time", ErrInvalidRequest)
	}

	run := &models.Run{
		ExperimentID: exp.ID,
		Status:       req.Status,
		EndTime:      req.EndTime,
		Params:       req.Params,
		Metrics:      req.Metrics,
		Artifacts:    req.Artifacts,
	}
	if req.StartTime != nil {
		run.StartTime = *req.StartTime
	}

	if err := r.experiments.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	slog.Info("run logged", "experiment", experimentName, "run_id", run.RunID, "algorithm", run.Algorithm)
	return run, nil
}

// RegisterVersion stores a new version of a model after checking its payload decodes
func (r *Registry) RegisterVersion(ctx context.Context, name string, req models.RegisterVersionRequest) (*models.ModelVersion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: model name is empty", ErrInvalidRequest)
	}

	switch req.Stage {
	case "", models.StageNone, models.StageStaging, models.StageProduction, models.StageArchived:
	default:
		return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidRequest, req.Stage)
	}

	if err := Validate(req.Payload); err != nil {
		return nil, err
	}

	if req.RunID != "" {
		if _, err := r.GetRun(ctx, req.RunID); err != nil {
			return nil, err
		}
	}

	v := &models.ModelVersion{
		ModelName: name,
		Stage:     req.Stage,
		RunID:     req.RunID,
		Source:    req.Source,
		Payload:   req.Payload,
	}
	if err := r.models.CreateVersion(ctx, req.Description, v); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrVersionConflict, name)
		}
		return nil, err
	}
	slog.Info("model version registered", "model", name, "version", v.Version)
	return v, nil
}
