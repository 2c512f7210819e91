package models

// HeatmapPoint represents a single bin in the incident density heatmap
type HeatmapPoint struct {
	Lat       float64 `json:"lat"`       // Bin center latitude
	Lng       float64 `json:"lng"`       // Bin center longitude
	LatBin    int     `json:"lat_bin"`   // 0-based
	LngBin    int     `json:"lng_bin"`   // 0-based
	Intensity float64 `json:"intensity"` // Normalized 0-1
	Value     int     `json:"value"`     // Incident count
}

// HeatmapResponse represents the heatmap API response
type HeatmapResponse struct {
	Points   []HeatmapPoint `json:"points"`
	Count    int            `json:"count"`
	MaxValue int            `json:"max_value"`
	MinValue int            `json:"min_value"`
	Bins     int            `json:"bins"`
}
