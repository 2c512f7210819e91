package clustering

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/stats"
)

// PCAModel projects incidents onto registered principal components.
// With Scale set, features are standardized on the batch before Mean is subtracted.
type PCAModel struct {
	Features               FeatureSet
	Scale                  bool
	Mean                   []float64   // empty means zero
	Components             [][]float64 // one row per component
	ExplainedVarianceRatio []float64
}

// Validate checks the component matrix against the feature set
func (m PCAModel) Validate() error {
	width := m.Features.Width()
	if width == 0 {
		return fmt.Errorf("unknown feature set %q", m.Features)
	}
	if len(m.Components) == 0 {
		return errors.New("pca model has no components")
	}
	if len(m.Mean) != 0 && len(m.Mean) != width {
		return fmt.Errorf("mean has %d values, %s features need %d", len(m.Mean), m.Features, width)
	}
	for i, c := range m.Components {
		if len(c) != width {
			return fmt.Errorf("component %d has %d dimensions, %s features need %d", i, len(c), m.Features, width)
		}
		for _, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("component %d has a non-finite weight", i)
			}
		}
	}
	if len(m.ExplainedVarianceRatio) != len(m.Components) {
		return fmt.Errorf("%d variance ratios for %d components", len(m.ExplainedVarianceRatio), len(m.Components))
	}
	var total float64
	for _, r := range m.ExplainedVarianceRatio {
		if r < 0 || r > 1 || math.IsNaN(r) {
			return fmt.Errorf("variance ratio %g outside [0, 1]", r)
		}
		total += r
	}
	if total > 1+1e-6 {
		return fmt.Errorf("variance ratios sum to %g", total)
	}
	return nil
}

// Project returns one row of component scores per incident
func (m PCAModel) Project(incidents []models.Incident) ([][]float64, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	rows, err := Features(incidents, m.Features)
	if err != nil {
		return nil, err
	}
	if m.Scale {
		rows = stats.StandardScale(rows)
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		scores := make([]float64, len(m.Components))
		for k, comp := range m.Components {
			var dot float64
			for j, v := range row {
				if len(m.Mean) != 0 {
					v -= m.Mean[j]
				}
				dot += v * comp[j]
			}
			scores[k] = dot
		}
		out[i] = scores
	}
	return out, nil
}

// VariancePercent returns the explained variance ratios as percentages rounded to 2 places
func (m PCAModel) VariancePercent() []float64 {
	pct := make([]float64, len(m.ExplainedVarianceRatio))
	for i, r := range m.ExplainedVarianceRatio {
		pct[i] = math.Round(r*10000) / 100
	}
	return pct
}

// Loadings ranks the input features by their absolute weight on the first n components
func (m PCAModel) Loadings(n int) []models.FeatureLoading {
	if n > len(m.Components) {
		n = len(m.Components)
	}

	names := m.Features.Names()
	loadings := make([]models.FeatureLoading, len(names))
	for j, name := range names {
		l := models.FeatureLoading{Feature: name, Impact: make([]float64, n)}
		for k := 0; k < n; k++ {
			l.Impact[k] = math.Abs(m.Components[k][j])
			l.Total += l.Impact[k]
		}
		loadings[j] = l
	}

	sort.SliceStable(loadings, func(a, b int) bool {
		return loadings[a].Total > loadings[b].Total
	})
	return loadings
}
