package models

// IncidentFilter represents filter parameters for querying incidents
type IncidentFilter struct {
	District    string `form:"district"`
	PrimaryType string `form:"primaryType"`
	Month       int    `form:"month"`  // 1-12
	SampleSize  int    `form:"sample"` // 0 = endpoint default, SampleAll = every row
	SampleSeed  int64  `form:"seed"`
}

// SampleAll asks for every matching row even where a default sample size applies
const SampleAll = -1

// HotspotQuery represents query parameters for the hotspot endpoint
type HotspotQuery struct {
	IncidentFilter
	TopN         int   `form:"topN"`
	ExcludeNoise *bool `form:"excludeNoise"`
}

// ZoneQuery represents query parameters for patrol zones and the briefing
type ZoneQuery struct {
	IncidentFilter
	Limit int `form:"limit"`
}

// HeatmapQuery represents query parameters for the density heatmap
type HeatmapQuery struct {
	IncidentFilter
	Bins int `form:"bins"` // bins per axis
}
