package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/patroliq-backend-go/internal/database"
	"github.com/jengzang/patroliq-backend-go/internal/models"
)

// ModelRepository handles registered models and their versions
type ModelRepository struct {
	db *sql.DB
}

// NewModelRepository creates a new model repository
func NewModelRepository(db *sql.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

// CreateVersion registers the model if needed and stores v as its next version.
// v.Version and v.CreatedAt are filled in. A version number taken by a
// concurrent writer is reported as ErrAlreadyExists.
func (r *ModelRepository) CreateVersion(ctx context.Context, description string, v *models.ModelVersion) error {
	if v.Stage == "" {
		v.Stage = models.StageNone
	}
	now := time.Now().UnixMilli()

	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO registered_models (name, description, created_at) VALUES (?, ?, ?)",
			v.ModelName, description, now)
		if err != nil {
			return fmt.Errorf("failed to register model: %w", err)
		}
		if description != "" {
			if _, err := tx.ExecContext(ctx, "UPDATE registered_models SET description = ? WHERE name = ?", description, v.ModelName); err != nil {
				return fmt.Errorf("failed to update model description: %w", err)
			}
		}

		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(version), 0) + 1 FROM model_versions WHERE model_name = ?", v.ModelName,
		).Scan(&v.Version); err != nil {
			return fmt.Errorf("failed to compute next version: %w", err)
		}

		var runID sql.NullString
		if v.RunID != "" {
			runID = sql.NullString{String: v.RunID, Valid: true}
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO model_versions
			(model_name, version, stage, run_id, source, payload, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			v.ModelName, v.Version, v.Stage, runID, v.Source, v.Payload, now)
		if isUniqueViolation(err) {
			return fmt.Errorf("model %q version %d: %w", v.ModelName, v.Version, ErrAlreadyExists)
		}
		if err != nil {
			return fmt.Errorf("failed to insert model version: %w", err)
		}

		v.CreatedAt = fromMillis(now)
		return nil
	})
}

// ListModels lists registered models by name with their latest version number
func (r *ModelRepository) ListModels(ctx context.Context) ([]models.RegisteredModel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT m.name, m.description, m.created_at,
			COALESCE((SELECT MAX(v.version) FROM model_versions v WHERE v.model_name = m.name), 0)
		FROM registered_models m ORDER BY m.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer rows.Close()

	var list []models.RegisteredModel
	for rows.Next() {
		var m models.RegisteredModel
		var created int64
		if err := rows.Scan(&m.Name, &m.Description, &created, &m.LatestVersion); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		m.CreatedAt = fromMillis(created)
		list = append(list, m)
	}
	return list, rows.Err()
}

const versionSelect = `SELECT v.model_name, v.version, v.stage, COALESCE(v.run_id, ''), v.source,
		v.payload, v.created_at, r.start_time
	FROM model_versions v LEFT JOIN runs r ON r.run_id = v.run_id`

// ListVersions lists the versions of a model, highest first
func (r *ModelRepository) ListVersions(ctx context.Context, name string) ([]models.ModelVersion, error) {
	exists, err := r.modelExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("model %q: %w", name, ErrNotFound)
	}

	rows, err := r.db.QueryContext(ctx, versionSelect+" WHERE v.model_name = ? ORDER BY v.version DESC", name)
	if err != nil {
		return nil, fmt.Errorf("failed to query model versions: %w", err)
	}
	defer rows.Close()

	var versions []models.ModelVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// LatestVersion returns the highest version of a model
func (r *ModelRepository) LatestVersion(ctx context.Context, name string) (*models.ModelVersion, error) {
	row := r.db.QueryRowContext(ctx, versionSelect+" WHERE v.model_name = ? ORDER BY v.version DESC LIMIT 1", name)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("model %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ModelRepository) modelExists(ctx context.Context, name string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registered_models WHERE name = ?", name).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check model: %w", err)
	}
	return n > 0, nil
}

func scanVersion(row rowScanner) (models.ModelVersion, error) {
	var v models.ModelVersion
	var created int64
	var runStart sql.NullInt64
	err := row.Scan(&v.ModelName, &v.Version, &v.Stage, &v.RunID, &v.Source, &v.Payload, &created, &runStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return v, err
		}
		return v, fmt.Errorf("failed to scan model version: %w", err)
	}
	v.CreatedAt = fromMillis(created)
	v.RunStarted = fromNullMillis(runStart)
	return v, nil
}
