package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/patroliq-backend-go/internal/clustering"
	"github.com/jengzang/patroliq-backend-go/internal/database"
	"github.com/jengzang/patroliq-backend-go/internal/models"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := database.Open(database.Config{Path: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return New(db, nil)
}

func TestDecode(t *testing.T) {
	a, err := Decode(`{"kind":"kmeans","features":"temporal","scale":true,"centroids":[[1,2,3],[20,5,7]]}`)
	require.NoError(t, err)
	m, ok := a.(clustering.CentroidModel)
	require.True(t, ok)
	assert.True(t, m.Scale)
	assert.Len(t, m.Centroids, 2)

	a, err = Decode(`{"kind":"stored_labels","labels":"geo"}`)
	require.NoError(t, err)
	assert.Equal(t, clustering.StoredLabels{Kind: clustering.LabelGeo}, a)

	bad := []string{
		`not json`,
		`{"kind":"dbscan"}`,
		`{"kind":"stored_labels","labels":"weekly"}`,
		`{"kind":"kmeans","features":"geo","centroids":[[1,2,3]]}`,
		`{"kind":"kmeans","features":"geo"}`,
	}
	for _, raw := range bad {
		_, err := Decode(raw)
		assert.ErrorIs(t, err, ErrInvalidPayload, raw)
	}
}

const pcaPayload = `{"kind":"pca","features":"geo","mean":[41,-87],
	"components":[[0.6,-0.8],[0.8,0.6]],"explained_variance_ratio":[0.75,0.25]}`

func TestDecodeProjector(t *testing.T) {
	m, err := DecodeProjector(pcaPayload)
	require.NoError(t, err)
	assert.Equal(t, clustering.FeaturesGeo, m.Features)
	assert.Len(t, m.Components, 2)
	require.NoError(t, Validate(pcaPayload))

	_, err = Decode(pcaPayload)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeProjector(`{"kind":"stored_labels","labels":"geo"}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = Validate(`{"kind":"pca","features":"geo","components":[[1,0]],"explained_variance_ratio":[0.5,0.5]}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestLookupProjector(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	_, err := reg.LookupProjector(ctx, "crime-pca")
	assert.ErrorIs(t, err, ErrModelNotFound)

	_, err = reg.RegisterVersion(ctx, "crime-pca", models.RegisterVersionRequest{Payload: pcaPayload})
	require.NoError(t, err)

	m, err := reg.LookupProjector(ctx, "crime-pca")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.75, 0.25}, m.ExplainedVarianceRatio)

	_, err = reg.Lookup(ctx, "crime-pca")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	_, err := reg.Lookup(ctx, "geo-dbscan")
	assert.ErrorIs(t, err, ErrModelNotFound)

	_, err = reg.RegisterVersion(ctx, "geo-dbscan", models.RegisterVersionRequest{Payload: `{"kind":"stored_labels","labels":"temporal"}`})
	require.NoError(t, err)
	v2, err := reg.RegisterVersion(ctx, "geo-dbscan", models.RegisterVersionRequest{Payload: `{"kind":"stored_labels","labels":"geo"}`})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	a, err := reg.Lookup(ctx, "geo-dbscan")
	require.NoError(t, err)
	assert.Equal(t, clustering.StoredLabels{Kind: clustering.LabelGeo}, a)
}

func TestRegisterVersionValidation(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	_, err := reg.RegisterVersion(ctx, "m", models.RegisterVersionRequest{Payload: `{"kind":"nope"}`})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = reg.RegisterVersion(ctx, "m", models.RegisterVersionRequest{Stage: "Live", Payload: `{"kind":"stored_labels","labels":"geo"}`})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = reg.RegisterVersion(ctx, "m", models.RegisterVersionRequest{RunID: "ghost", Payload: `{"kind":"stored_labels","labels":"geo"}`})
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = reg.RegisterVersion(ctx, " ", models.RegisterVersionRequest{Payload: `{"kind":"stored_labels","labels":"geo"}`})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	list, err := reg.ListRegisteredModels(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExperimentTracking(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	_, err := reg.CreateExperiment(ctx, "temporal-clustering")
	require.NoError(t, err)
	_, err = reg.CreateExperiment(ctx, "temporal-clustering")
	assert.ErrorIs(t, err, ErrExperimentExists)

	_, err = reg.RunsForExperiment(ctx, "missing")
	assert.ErrorIs(t, err, ErrExperimentNotFound)

	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)
	run, err := reg.LogRun(ctx, "temporal-clustering", models.LogRunRequest{
		StartTime: &start,
		EndTime:   &end,
		Params:    map[string]string{"algorithm": "KMeans", "n_clusters": "4"},
		Metrics:   map[string]float64{"inertia": 1234.5},
		Artifacts: []string{"kmeans/model.pkl"},
	})
	require.NoError(t, err)
	assert.Equal(t, "KMeans", run.Algorithm)

	_, err = reg.LogRun(ctx, "temporal-clustering", models.LogRunRequest{Status: "PAUSED"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = reg.LogRun(ctx, "temporal-clustering", models.LogRunRequest{StartTime: &end, EndTime: &start})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	runs, err := reg.RunsForExperiment(ctx, "temporal-clustering")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.RunID, runs[0].RunID)

	got, err := reg.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, []string{"kmeans/model.pkl"}, got.Artifacts)
	require.NotNil(t, got.EndTime)

	_, err = reg.GetRun(ctx, "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	v, err := reg.RegisterVersion(ctx, "temporal-kmeans", models.RegisterVersionRequest{
		RunID:   run.RunID,
		Stage:   models.StageProduction,
		Payload: `{"kind":"kmeans","features":"temporal","centroids":[[2,5,7],[14,2,3]]}`,
	})
	require.NoError(t, err)

	versions, err := reg.LatestVersions(ctx, "temporal-kmeans")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, v.Version, versions[0].Version)
	require.NotNil(t, versions[0].RunStarted)
	assert.True(t, versions[0].RunStarted.Equal(start))

	_, err = reg.LatestVersions(ctx, "unknown")
	assert.ErrorIs(t, err, ErrModelNotFound)
}
