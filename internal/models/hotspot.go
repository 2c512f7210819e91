package models

// ClusterCell is one (geo cluster, temporal cluster) pair with its risk scores
type ClusterCell struct {
	GeoCluster    int     `json:"geo_cluster"`
	TempCluster   int     `json:"temp_cluster"`
	CrimeCount    int     `json:"crime_count"`
	MeanLatitude  float64 `json:"mean_latitude"`
	MeanLongitude float64 `json:"mean_longitude"`
	GeoRisk       float64 `json:"geo_risk"`  // Normalized 0~1
	TempRisk      float64 `json:"temp_risk"` // Normalized 0~1
	FinalRisk     float64 `json:"final_risk"`
}

// HotspotResponse represents the patrol hotspot API response
type HotspotResponse struct {
	Hotspots     []ClusterCell `json:"hotspots"`
	Count        int           `json:"count"`
	TotalCells   int           `json:"total_cells"`
	RecordCount  int           `json:"record_count"`
	ExcludeNoise bool          `json:"exclude_noise"`
	GeoModel     string        `json:"geo_model"`
	TempModel    string        `json:"temp_model"`
	CenterLat    float64       `json:"center_lat"`
	CenterLon    float64       `json:"center_lon"`
}

// PatrolZone is a ranked geo cluster with its operational summary
type PatrolZone struct {
	Rank         int     `json:"rank"`
	GeoCluster   int     `json:"geo_cluster"`
	CrimeCount   int     `json:"crime_count"`
	TopCrime     string  `json:"top_crime"`
	District     string  `json:"district"`
	CenterLat    float64 `json:"center_lat"`
	CenterLon    float64 `json:"center_lon"`
	RadiusMeters float64 `json:"radius_meters"`
}

// BriefingResponse is the operational patrol briefing
type BriefingResponse struct {
	Zones    []PatrolZone `json:"zones"`
	Markdown string       `json:"markdown"`
}
