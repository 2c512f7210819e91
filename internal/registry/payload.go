package registry

import (
	"encoding/json"
	"fmt"

	"github.com/jengzang/patroliq-backend-go/internal/clustering"
)

// Payload kinds
const (
	KindKMeans       = "kmeans"
	KindStoredLabels = "stored_labels"
	KindPCA          = "pca"
)

// payload is the JSON document stored with a model version
type payload struct {
	Kind      string      `json:"kind"`
	Features  string      `json:"features,omitempty"`
	Scale     bool        `json:"scale,omitempty"`
	Centroids [][]float64 `json:"centroids,omitempty"`
	Labels    string      `json:"labels,omitempty"`

	Mean                   []float64   `json:"mean,omitempty"`
	Components             [][]float64 `json:"components,omitempty"`
	ExplainedVarianceRatio []float64   `json:"explained_variance_ratio,omitempty"`
}

func parse(raw string) (payload, error) {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}

// Validate checks that a version payload decodes into a cluster model or a projection
func Validate(raw string) error {
	p, err := parse(raw)
	if err != nil {
		return err
	}
	if p.Kind == KindPCA {
		_, err = DecodeProjector(raw)
		return err
	}
	_, err = Decode(raw)
	return err
}

// DecodeProjector turns a pca version payload into a projection model
func DecodeProjector(raw string) (clustering.PCAModel, error) {
	p, err := parse(raw)
	if err != nil {
		return clustering.PCAModel{}, err
	}
	if p.Kind != KindPCA {
		return clustering.PCAModel{}, fmt.Errorf("%w: kind %q is not a projection", ErrInvalidPayload, p.Kind)
	}

	m := clustering.PCAModel{
		Features:               clustering.FeatureSet(p.Features),
		Scale:                  p.Scale,
		Mean:                   p.Mean,
		Components:             p.Components,
		ExplainedVarianceRatio: p.ExplainedVarianceRatio,
	}
	if err := m.Validate(); err != nil {
		return clustering.PCAModel{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return m, nil
}

// Decode turns a version payload into an assigner
func Decode(raw string) (clustering.Assigner, error) {
	p, err := parse(raw)
	if err != nil {
		return nil, err
	}

	switch p.Kind {
	case KindKMeans:
		m := clustering.CentroidModel{
			Features:  clustering.FeatureSet(p.Features),
			Scale:     p.Scale,
			Centroids: p.Centroids,
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return m, nil
	case KindStoredLabels:
		kind := clustering.LabelKind(p.Labels)
		if kind != clustering.LabelGeo && kind != clustering.LabelTemporal {
			return nil, fmt.Errorf("%w: unknown label kind %q", ErrInvalidPayload, p.Labels)
		}
		return clustering.StoredLabels{Kind: kind}, nil
	case KindPCA:
		return nil, fmt.Errorf("%w: kind %q is a projection, not a cluster model", ErrInvalidPayload, p.Kind)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidPayload, p.Kind)
	}
}
