package models

import "time"

// NoiseCluster is the geo cluster label for incidents the spatial clustering left unclustered
const NoiseCluster = -1

// Incident represents one reported crime event from the cleaned dataset
type Incident struct {
	ID         int64     `json:"id" db:"id"`
	CaseID     string    `json:"case_id,omitempty" db:"case_id"`
	OccurredAt time.Time `json:"occurred_at,omitempty" db:"occurred_at"`

	// Classification
	PrimaryType         string `json:"primary_type" db:"primary_type"`
	Description         string `json:"description,omitempty" db:"description"`
	LocationDescription string `json:"location_description,omitempty" db:"location_description"`
	Arrest              bool   `json:"arrest" db:"arrest"`
	Domestic            bool   `json:"domestic" db:"domestic"`
	District            string `json:"district,omitempty" db:"district"`

	// Location (WGS84)
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	// Temporal features
	Hour      int `json:"hour" db:"hour"`               // 0-23
	DayOfWeek int `json:"day_of_week" db:"day_of_week"` // 0=Monday ... 6=Sunday
	Month     int `json:"month" db:"month"`             // 1-12

	// Pre-computed cluster labels, nil when the dataset carried none
	GeoCluster  *int `json:"geo_cluster,omitempty" db:"geo_cluster"`
	TempCluster *int `json:"temp_cluster,omitempty" db:"temp_cluster"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IncidentRecord is the scoring input: a located incident carrying both cluster labels
type IncidentRecord struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	GeoCluster  int     `json:"geo_cluster"`
	TempCluster int     `json:"temp_cluster"`
}

// DayNames maps DayOfWeek values to their names, Monday first
var DayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// MonthNames maps Month-1 to the short month name
var MonthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
