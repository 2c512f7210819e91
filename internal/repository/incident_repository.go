package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jengzang/patroliq-backend-go/internal/database"
	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/stats"
)

// IncidentRepository handles database operations for incidents
type IncidentRepository struct {
	db *sql.DB
}

// NewIncidentRepository creates a new incident repository
func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

const incidentColumns = `id, case_id, occurred_at, primary_type, description, location_description,
	arrest, domestic, district, latitude, longitude, hour, day_of_week, month,
	geo_cluster, temp_cluster, created_at`

// InsertBatch stores incidents in one transaction and returns the number written
func (r *IncidentRepository) InsertBatch(ctx context.Context, incidents []models.Incident) (int, error) {
	if len(incidents) == 0 {
		return 0, nil
	}

	err := database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		return insertIncidents(ctx, tx, incidents)
	})
	if err != nil {
		return 0, err
	}
	return len(incidents), nil
}

// ReplaceAll deletes every incident and stores the new set in the same
// transaction. On failure the previous rows are left untouched.
func (r *IncidentRepository) ReplaceAll(ctx context.Context, incidents []models.Incident) (int, error) {
	err := database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM incidents"); err != nil {
			return fmt.Errorf("failed to delete incidents: %w", err)
		}
		return insertIncidents(ctx, tx, incidents)
	})
	if err != nil {
		return 0, err
	}
	return len(incidents), nil
}

func insertIncidents(ctx context.Context, tx *sql.Tx, incidents []models.Incident) error {
	if len(incidents) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO incidents (
		case_id, occurred_at, primary_type, description, location_description,
		arrest, domestic, district, latitude, longitude, hour, day_of_week, month,
		geo_cluster, temp_cluster, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare incident insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for i := range incidents {
		inc := &incidents[i]
		var occurred int64
		if !inc.OccurredAt.IsZero() {
			occurred = inc.OccurredAt.Unix()
		}
		res, err := stmt.ExecContext(ctx,
			inc.CaseID, occurred, inc.PrimaryType, inc.Description, inc.LocationDescription,
			inc.Arrest, inc.Domestic, inc.District, inc.Latitude, inc.Longitude,
			inc.Hour, inc.DayOfWeek, inc.Month,
			nullInt(inc.GeoCluster), nullInt(inc.TempCluster), now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert incident %d: %w", i, err)
		}
		if id, err := res.LastInsertId(); err == nil {
			inc.ID = id
		}
	}
	return nil
}

// List retrieves incidents matching the filter in insertion order.
// With SampleSize set, a seeded random sample of that size is returned instead.
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error) {
	where, args := buildIncidentWhere(filter)
	query := "SELECT " + incidentColumns + " FROM incidents" + where + " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}

	return Sample(incidents, filter.SampleSize, filter.SampleSeed), nil
}

// Sample returns n incidents picked with a seeded shuffle, or all of them when
// n is zero or not smaller than the input.
func Sample(incidents []models.Incident, n int, seed int64) []models.Incident {
	if n <= 0 || n >= len(incidents) {
		return incidents
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(incidents), func(i, j int) {
		incidents[i], incidents[j] = incidents[j], incidents[i]
	})
	return incidents[:n]
}

// Count returns the number of incidents matching the filter
func (r *IncidentRepository) Count(ctx context.Context, filter models.IncidentFilter) (int, error) {
	where, args := buildIncidentWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM incidents"+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count incidents: %w", err)
	}
	return total, nil
}

// CountByType returns incident counts per primary type, most frequent first
func (r *IncidentRepository) CountByType(ctx context.Context, filter models.IncidentFilter) ([]stats.Count, error) {
	where, args := buildIncidentWhere(filter)
	query := `SELECT primary_type, COUNT(*) AS cnt FROM incidents` + where +
		` GROUP BY primary_type ORDER BY cnt DESC, primary_type`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count incidents by type: %w", err)
	}
	defer rows.Close()

	var counts []stats.Count
	for rows.Next() {
		var c stats.Count
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Bucket columns accepted by CountByBucket
const (
	BucketHour      = "hour"
	BucketDayOfWeek = "day_of_week"
	BucketMonth     = "month"
)

// CountByBucket returns incident counts keyed by an ordinal column
func (r *IncidentRepository) CountByBucket(ctx context.Context, column string, filter models.IncidentFilter) (map[int]int, error) {
	switch column {
	case BucketHour, BucketDayOfWeek, BucketMonth:
	default:
		return nil, fmt.Errorf("unsupported bucket column %q", column)
	}

	where, args := buildIncidentWhere(filter)
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM incidents%s GROUP BY %s", column, where, column)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count incidents by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var bucket, count int
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		counts[bucket] = count
	}
	return counts, rows.Err()
}

// ArrestRates returns the arrest share for domestic and non-domestic incidents
func (r *IncidentRepository) ArrestRates(ctx context.Context, filter models.IncidentFilter) (models.ArrestRate, error) {
	where, args := buildIncidentWhere(filter)
	query := "SELECT domestic, AVG(arrest) FROM incidents" + where + " GROUP BY domestic"

	var rate models.ArrestRate
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return rate, fmt.Errorf("failed to query arrest rates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var domestic bool
		var avg float64
		if err := rows.Scan(&domestic, &avg); err != nil {
			return rate, fmt.Errorf("failed to scan arrest rate: %w", err)
		}
		if domestic {
			rate.Domestic = avg
		} else {
			rate.NonDomestic = avg
		}
	}
	return rate, rows.Err()
}

func buildIncidentWhere(filter models.IncidentFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.District != "" {
		conditions = append(conditions, "district = ?")
		args = append(args, filter.District)
	}
	if filter.PrimaryType != "" {
		conditions = append(conditions, "primary_type = ?")
		args = append(args, strings.ToUpper(filter.PrimaryType))
	}
	if filter.Month > 0 {
		conditions = append(conditions, "month = ?")
		args = append(args, filter.Month)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIncident(row rowScanner) (models.Incident, error) {
	var inc models.Incident
	var occurred, created int64
	var geo, temp sql.NullInt64

	err := row.Scan(
		&inc.ID, &inc.CaseID, &occurred, &inc.PrimaryType, &inc.Description, &inc.LocationDescription,
		&inc.Arrest, &inc.Domestic, &inc.District, &inc.Latitude, &inc.Longitude,
		&inc.Hour, &inc.DayOfWeek, &inc.Month, &geo, &temp, &created,
	)
	if err != nil {
		return inc, fmt.Errorf("failed to scan incident: %w", err)
	}

	if occurred != 0 {
		inc.OccurredAt = time.Unix(occurred, 0).UTC()
	}
	inc.CreatedAt = fromMillis(created)
	inc.GeoCluster = intPtr(geo)
	inc.TempCluster = intPtr(temp)
	return inc, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
