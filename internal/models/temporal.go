package models

// PatternType labels the dominant hour of a temporal cluster
type PatternType string

// Pattern types
const (
	PatternLateNight    PatternType = "Late-Night High-Risk Pattern"
	PatternEveningRush  PatternType = "Evening Rush-Hour Pattern"
	PatternDaytime      PatternType = "Daytime Activity Pattern"
	PatternEarlyMorning PatternType = "Early Morning Opportunistic Pattern"
)

// TimeClusterSummary describes one temporal cluster
type TimeClusterSummary struct {
	TimeCluster   int         `json:"time_cluster"`
	CrimeCount    int         `json:"crime_count"`
	PeakHour      int         `json:"peak_hour"`
	PeakDay       string      `json:"peak_day"`
	PeakMonth     string      `json:"peak_month"`
	MeanHour      float64     `json:"mean_hour"`     // Circular mean, 0-24
	Concentration float64     `json:"concentration"` // 0 (spread) ~ 1 (single hour)
	TopCrimes     []string    `json:"top_crimes"`
	PatternType   PatternType `json:"pattern_type"`
	PatrolWindow  string      `json:"patrol_window"`
}

// HourClusterCount is one cell of the hour x cluster crosstab
type HourClusterCount struct {
	Hour        int `json:"hour"`
	TimeCluster int `json:"time_cluster"`
	Count       int `json:"count"`
}

// MonthClusterCount is one cell of the month x cluster trend series
type MonthClusterCount struct {
	Month       int `json:"month"` // 1-12
	TimeCluster int `json:"time_cluster"`
	Count       int `json:"count"`
}

// TemporalOverview is the key temporal intelligence summary
type TemporalOverview struct {
	PeakHours      []int               `json:"peak_hours"`
	WeekendCount   int                 `json:"weekend_count"`
	WeekdayCount   int                 `json:"weekday_count"`
	HigherOn       string              `json:"higher_on"` // "Weekends" or "Weekdays"
	TopSeason      string              `json:"top_season"`
	HourByCluster  []HourClusterCount  `json:"hour_by_cluster,omitempty"`
	MonthByCluster []MonthClusterCount `json:"month_by_cluster,omitempty"`
}
