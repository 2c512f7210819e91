package models

// ProjectionQuery represents query parameters for the PCA projection
type ProjectionQuery struct {
	IncidentFilter
	Points int `form:"points"` // projected points to return, 0 = default
}

// FeatureLoading is the absolute weight of one input feature on the leading components
type FeatureLoading struct {
	Feature string    `json:"feature"`
	Impact  []float64 `json:"impact"` // per component, PC1 first
	Total   float64   `json:"total"`
}

// ProjectedPoint is one incident in principal component space
type ProjectedPoint struct {
	ID          int64     `json:"id"`
	PrimaryType string    `json:"primary_type"`
	District    string    `json:"district"`
	Season      string    `json:"season"`
	Components  []float64 `json:"components"`
}

// ProjectionResponse represents the PCA projection API response
type ProjectionResponse struct {
	Model             string           `json:"model"`
	RecordCount       int              `json:"record_count"`
	Features          []string         `json:"features"`
	ExplainedVariance []float64        `json:"explained_variance_pct"` // scree series
	LeadingVariance   float64          `json:"leading_variance_pct"`   // first 3 components
	Loadings          []FeatureLoading `json:"loadings"`
	Points            []ProjectedPoint `json:"points"`
}
