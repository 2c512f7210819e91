package models

import "time"

// Experiment groups tracked training runs
type Experiment struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Run is one tracked training run with its logged params, metrics and artifacts
type Run struct {
	RunID        string             `json:"run_id" db:"run_id"`
	ExperimentID int64              `json:"experiment_id" db:"experiment_id"`
	Algorithm    string             `json:"algorithm" db:"algorithm"` // params["algorithm"], "Unknown" if absent
	Status       string             `json:"status" db:"status"`
	StartTime    time.Time          `json:"start_time" db:"start_time"`
	EndTime      *time.Time         `json:"end_time,omitempty" db:"end_time"`
	Params       map[string]string  `json:"params"`
	Metrics      map[string]float64 `json:"metrics"`
	Artifacts    []string           `json:"artifacts,omitempty"`
}

// RegisteredModel is a named model in the registry
type RegisteredModel struct {
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description,omitempty" db:"description"`
	LatestVersion int       `json:"latest_version" db:"latest_version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ModelVersion is one registered version of a model
type ModelVersion struct {
	ModelName  string     `json:"model_name" db:"model_name"`
	Version    int        `json:"version" db:"version"`
	Stage      string     `json:"stage" db:"stage"`
	RunID      string     `json:"run_id,omitempty" db:"run_id"`
	Source     string     `json:"source,omitempty" db:"source"`
	Payload    string     `json:"-" db:"payload"`
	RunStarted *time.Time `json:"run_started,omitempty"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Run status constants
const (
	RunStatusRunning  = "RUNNING"
	RunStatusFinished = "FINISHED"
	RunStatusFailed   = "FAILED"
)

// Model stage constants
const (
	StageNone       = "None"
	StageStaging    = "Staging"
	StageProduction = "Production"
	StageArchived   = "Archived"
)

// CreateExperimentRequest is the body of POST /api/v1/experiments
type CreateExperimentRequest struct {
	Name string `json:"name" binding:"required"`
}

// LogRunRequest is the body of POST /api/v1/experiments/:name/runs
type LogRunRequest struct {
	Status    string             `json:"status"`
	StartTime *time.Time         `json:"start_time"`
	EndTime   *time.Time         `json:"end_time"`
	Params    map[string]string  `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
	Artifacts []string           `json:"artifacts"`
}

// RegisterVersionRequest is the body of POST /api/v1/models/:name/versions
type RegisterVersionRequest struct {
	Description string `json:"description"`
	RunID       string `json:"run_id"`
	Source      string `json:"source"`
	Stage       string `json:"stage"`
	Payload     string `json:"payload" binding:"required"` // JSON model definition
}
