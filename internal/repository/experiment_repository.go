package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/patroliq-backend-go/internal/database"
	"github.com/jengzang/patroliq-backend-go/internal/models"
)

// UnknownAlgorithm is reported for runs that did not log an "algorithm" param
const UnknownAlgorithm = "Unknown"

// ExperimentRepository handles experiments and their tracked runs
type ExperimentRepository struct {
	db *sql.DB
}

// NewExperimentRepository creates a new experiment repository
func NewExperimentRepository(db *sql.DB) *ExperimentRepository {
	return &ExperimentRepository{db: db}
}

// CreateExperiment inserts a new experiment; the name must be unused
func (r *ExperimentRepository) CreateExperiment(ctx context.Context, name string) (*models.Experiment, error) {
	exp := &models.Experiment{Name: name, CreatedAt: fromMillis(time.Now().UnixMilli())}

	err := database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		var existing int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM experiments WHERE name = ?", name).Scan(&existing)
		if err == nil {
			return fmt.Errorf("experiment %q: %w", name, ErrAlreadyExists)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check experiment: %w", err)
		}

		res, err := tx.ExecContext(ctx, "INSERT INTO experiments (name, created_at) VALUES (?, ?)", name, exp.CreatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert experiment: %w", err)
		}
		exp.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// GetExperimentByName retrieves an experiment by its unique name
func (r *ExperimentRepository) GetExperimentByName(ctx context.Context, name string) (*models.Experiment, error) {
	var exp models.Experiment
	var created int64
	err := r.db.QueryRowContext(ctx, "SELECT id, name, created_at FROM experiments WHERE name = ?", name).
		Scan(&exp.ID, &exp.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("experiment %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	exp.CreatedAt = fromMillis(created)
	return &exp, nil
}

// CreateRun stores a run with its params, metrics and artifacts.
// A run id is generated when empty; a zero start time becomes now.
func (r *ExperimentRepository) CreateRun(ctx context.Context, run *models.Run) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.StartTime.IsZero() {
		run.StartTime = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = models.RunStatusFinished
	}

	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO runs (run_id, experiment_id, status, start_time, end_time) VALUES (?, ?, ?, ?, ?)",
			run.RunID, run.ExperimentID, run.Status, run.StartTime.UnixMilli(), nullMillis(run.EndTime),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for k, v := range run.Params {
			if _, err := tx.ExecContext(ctx, "INSERT INTO run_params (run_id, key, value) VALUES (?, ?, ?)", run.RunID, k, v); err != nil {
				return fmt.Errorf("failed to insert param %s: %w", k, err)
			}
		}
		for k, v := range run.Metrics {
			if _, err := tx.ExecContext(ctx, "INSERT INTO run_metrics (run_id, key, value) VALUES (?, ?, ?)", run.RunID, k, v); err != nil {
				return fmt.Errorf("failed to insert metric %s: %w", k, err)
			}
		}
		for _, path := range run.Artifacts {
			if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO run_artifacts (run_id, path) VALUES (?, ?)", run.RunID, path); err != nil {
				return fmt.Errorf("failed to insert artifact %s: %w", path, err)
			}
		}

		run.Algorithm = algorithmOf(run.Params)
		return nil
	})
}

// SearchRuns lists the runs of an experiment, newest start time first
func (r *ExperimentRepository) SearchRuns(ctx context.Context, experimentID int64) ([]models.Run, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT run_id, experiment_id, status, start_time, end_time
		FROM runs WHERE experiment_id = ? ORDER BY start_time DESC, run_id`, experimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	// rows must be closed first: an in-memory database has a single connection
	for i := range runs {
		if err := r.loadRunData(ctx, &runs[i], false); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// GetRun retrieves one run with params, metrics and artifacts
func (r *ExperimentRepository) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT run_id, experiment_id, status, start_time, end_time
		FROM runs WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadRunData(ctx, &run, true); err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *ExperimentRepository) loadRunData(ctx context.Context, run *models.Run, artifacts bool) error {
	run.Params = make(map[string]string)
	run.Metrics = make(map[string]float64)

	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM run_params WHERE run_id = ?", run.RunID)
	if err != nil {
		return fmt.Errorf("failed to query params: %w", err)
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan param: %w", err)
		}
		run.Params[k] = v
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, "SELECT key, value FROM run_metrics WHERE run_id = ?", run.RunID)
	if err != nil {
		return fmt.Errorf("failed to query metrics: %w", err)
	}
	for rows.Next() {
		var k string
		var v float64
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan metric: %w", err)
		}
		run.Metrics[k] = v
	}
	rows.Close()

	run.Algorithm = algorithmOf(run.Params)

	if !artifacts {
		return nil
	}

	rows, err = r.db.QueryContext(ctx, "SELECT path FROM run_artifacts WHERE run_id = ? ORDER BY path", run.RunID)
	if err != nil {
		return fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return fmt.Errorf("failed to scan artifact: %w", err)
		}
		run.Artifacts = append(run.Artifacts, p)
	}
	return rows.Err()
}

func scanRun(row rowScanner) (models.Run, error) {
	var run models.Run
	var start int64
	var end sql.NullInt64
	if err := row.Scan(&run.RunID, &run.ExperimentID, &run.Status, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartTime = fromMillis(start)
	run.EndTime = fromNullMillis(end)
	return run, nil
}

func algorithmOf(params map[string]string) string {
	if a, ok := params["algorithm"]; ok && a != "" {
		return a
	}
	return UnknownAlgorithm
}
