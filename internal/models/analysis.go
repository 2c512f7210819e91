package models

import "github.com/jengzang/patroliq-backend-go/internal/stats"

// BucketCount is a count for one ordinal bucket (hour, weekday, month)
type BucketCount struct {
	Bucket int    `json:"bucket"`
	Label  string `json:"label,omitempty"`
	Count  int    `json:"count"`
}

// ArrestRate compares arrest rates for domestic and non-domestic incidents
type ArrestRate struct {
	Domestic    float64 `json:"domestic"`
	NonDomestic float64 `json:"non_domestic"`
}

// CrimeSummary is the exploratory overview of the incident table
type CrimeSummary struct {
	TotalIncidents int           `json:"total_incidents"`
	ByType         []stats.Count `json:"by_type"`
	ByHour         []BucketCount `json:"by_hour"`
	ByDayOfWeek    []BucketCount `json:"by_day_of_week"`
	ByMonth        []BucketCount `json:"by_month"`
	ArrestRate     ArrestRate    `json:"arrest_rate"`
}

// SeverityCount is the incident count for a primary type with its severity score
type SeverityCount struct {
	PrimaryType string `json:"primary_type"`
	Severity    int    `json:"severity"` // 1-5, 0 when unmapped
	Count       int    `json:"count"`
}
