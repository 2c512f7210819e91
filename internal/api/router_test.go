package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/patroliq-backend-go/internal/auth"
	"github.com/jengzang/patroliq-backend-go/internal/config"
	"github.com/jengzang/patroliq-backend-go/internal/database"
	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/observability"
	"github.com/jengzang/patroliq-backend-go/internal/repository"
)

const testSecret = "router-test-secret"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func label(v int) *int { return &v }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	_, err = repository.NewIncidentRepository(db).InsertBatch(ctx, []models.Incident{
		{PrimaryType: "THEFT", District: "1", Latitude: 41.880, Longitude: -87.630, Hour: 22, DayOfWeek: 5, Month: 7, GeoCluster: label(0), TempCluster: label(1)},
		{PrimaryType: "THEFT", District: "1", Latitude: 41.881, Longitude: -87.631, Hour: 23, DayOfWeek: 5, Month: 7, GeoCluster: label(0), TempCluster: label(1)},
		{PrimaryType: "ROBBERY", District: "4", Latitude: 41.750, Longitude: -87.600, Hour: 9, DayOfWeek: 2, Month: 3, GeoCluster: label(1), TempCluster: label(0)},
		{PrimaryType: "BATTERY", District: "8", Latitude: 41.790, Longitude: -87.700, Hour: 14, DayOfWeek: 1, Month: 1, GeoCluster: label(-1), TempCluster: label(0)},
	})
	require.NoError(t, err)

	v := config.New()
	v.Set(config.KeyJWTSecret, testSecret)
	v.Set(config.KeyRateLimitRPS, 0)
	v.Set(config.KeyHotspotSampleSize, 0)
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	router, err := SetupRouter(cfg, db, observability.NewMetrics())
	require.NoError(t, err)

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: testSecret, Issuer: TokenIssuer, Expiration: time.Hour})
	require.NoError(t, err)
	token, err := jwtService.GenerateToken("trainer", []string{auth.RoleTrainer})
	require.NoError(t, err)

	return &testServer{t: t, router: router, token: token}
}

func (s *testServer) do(method, path string, body interface{}, authed bool) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" && bytes.HasPrefix(rec.Body.Bytes(), []byte("{")) {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func (s *testServer) registerModels() {
	s.t.Helper()
	code, _ := s.do(http.MethodPost, "/api/v1/models/geo-dbscan/versions", models.RegisterVersionRequest{Payload: `{"kind":"stored_labels","labels":"geo"}`}, true)
	require.Equal(s.t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, "/api/v1/models/temporal-kmeans/versions", models.RegisterVersionRequest{Payload: `{"kind":"stored_labels","labels":"temporal"}`}, true)
	require.Equal(s.t, http.StatusCreated, code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, code)
}

func TestHotspotsEndpoint(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/v1/patrol/hotspots", nil, false)
	assert.Equal(t, http.StatusNotFound, code, "models not registered yet")
	assert.Contains(t, env.Error, "model not found")

	s.registerModels()

	code, env = s.do(http.MethodGet, "/api/v1/patrol/hotspots?topN=2", nil, false)
	require.Equal(t, http.StatusOK, code)
	var resp models.HotspotResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 3, resp.TotalCells)
	assert.Equal(t, 0, resp.Hotspots[0].GeoCluster)
	assert.Equal(t, 2, resp.Hotspots[0].CrimeCount)

	code, env = s.do(http.MethodGet, "/api/v1/patrol/hotspots?excludeNoise=true", nil, false)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 2, resp.TotalCells)

	code, _ = s.do(http.MethodGet, "/api/v1/patrol/hotspots?topN=-3", nil, false)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/v1/patrol/hotspots?topN=abc", nil, false)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodGet, "/api/v1/patrol/hotspots?district=99", nil, false)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "invalid input")
}

func TestZonesAndBriefingEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.registerModels()

	code, env := s.do(http.MethodGet, "/api/v1/patrol/zones?limit=1", nil, false)
	require.Equal(t, http.StatusOK, code)
	var zones struct {
		Zones []models.PatrolZone `json:"zones"`
		Count int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &zones))
	assert.Equal(t, 1, zones.Count)
	assert.Equal(t, "THEFT", zones.Zones[0].TopCrime)

	code, env = s.do(http.MethodGet, "/api/v1/patrol/briefing", nil, false)
	require.Equal(t, http.StatusOK, code)
	var brief models.BriefingResponse
	require.NoError(t, json.Unmarshal(env.Data, &brief))
	assert.Contains(t, brief.Markdown, "Patrol Zone 2")
}

func TestTemporalAndAnalysisEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.registerModels()

	for _, path := range []string{
		"/api/v1/temporal/overview",
		"/api/v1/temporal/clusters",
		"/api/v1/analysis/summary",
		"/api/v1/analysis/heatmap?bins=4",
		"/api/v1/analysis/severity",
	} {
		code, env := s.do(http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, 0, env.Code, path)
	}

	code, _ := s.do(http.MethodGet, "/api/v1/analysis/heatmap?bins=100000", nil, false)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRegistryEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodPost, "/api/v1/experiments", models.CreateExperimentRequest{Name: "geo"}, false)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/v1/experiments", models.CreateExperimentRequest{Name: "geo"}, true)
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, "/api/v1/experiments", models.CreateExperimentRequest{Name: "geo"}, true)
	assert.Equal(t, http.StatusConflict, code)
	code, _ = s.do(http.MethodPost, "/api/v1/experiments", map[string]string{}, true)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := s.do(http.MethodPost, "/api/v1/experiments/geo/runs", models.LogRunRequest{
		Params:  map[string]string{"algorithm": "DBSCAN"},
		Metrics: map[string]float64{"silhouette": 0.42},
	}, true)
	require.Equal(t, http.StatusCreated, code)
	var run models.Run
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.NotEmpty(t, run.RunID)

	code, _ = s.do(http.MethodGet, "/api/v1/experiments/geo", nil, false)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/v1/experiments/missing", nil, false)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodGet, "/api/v1/experiments/geo/runs", nil, false)
	require.Equal(t, http.StatusOK, code)
	var runs struct {
		Runs  []models.Run `json:"runs"`
		Count int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &runs))
	assert.Equal(t, 1, runs.Count)
	assert.Equal(t, "DBSCAN", runs.Runs[0].Algorithm)

	code, _ = s.do(http.MethodGet, "/api/v1/runs/"+run.RunID, nil, false)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/v1/runs/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPost, "/api/v1/models/geo-dbscan/versions", models.RegisterVersionRequest{
		RunID:   run.RunID,
		Payload: `{"kind":"kmeans","features":"geo","centroids":[[1]]}`,
	}, true)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/v1/models/geo-dbscan/versions", models.RegisterVersionRequest{
		RunID:   run.RunID,
		Stage:   models.StageProduction,
		Payload: `{"kind":"stored_labels","labels":"geo"}`,
	}, true)
	require.Equal(t, http.StatusCreated, code)

	code, env = s.do(http.MethodGet, "/api/v1/models", nil, false)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Models []models.RegisteredModel `json:"models"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Models, 1)
	assert.Equal(t, 1, list.Models[0].LatestVersion)

	code, _ = s.do(http.MethodGet, "/api/v1/models/geo-dbscan/versions", nil, false)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/v1/models/other/versions", nil, false)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/health", nil, false)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/health"`)
}

func TestProjectionEndpoint(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodGet, "/api/v1/analysis/projection", nil, false)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPost, "/api/v1/models/crime-pca/versions", models.RegisterVersionRequest{
		Payload: `{"kind":"pca","features":"geo","scale":true,"components":[[0.6,-0.8],[0.8,0.6]],"explained_variance_ratio":[0.8,0.2]}`,
	}, true)
	require.Equal(t, http.StatusCreated, code)

	code, env := s.do(http.MethodGet, "/api/v1/analysis/projection?points=3", nil, false)
	require.Equal(t, http.StatusOK, code)

	var resp models.ProjectionResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 4, resp.RecordCount)
	assert.Equal(t, []string{"latitude", "longitude"}, resp.Features)
	assert.Equal(t, []float64{80, 20}, resp.ExplainedVariance)
	assert.Len(t, resp.Points, 3)
	assert.Len(t, resp.Loadings, 2)

	code, _ = s.do(http.MethodGet, "/api/v1/analysis/projection?points=-1", nil, false)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHotspotsSampleAll(t *testing.T) {
	s := newTestServer(t)
	s.registerModels()

	code, env := s.do(http.MethodGet, "/api/v1/patrol/hotspots?sample=-1", nil, false)
	require.Equal(t, http.StatusOK, code)

	var resp models.HotspotResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 4, resp.RecordCount)

	code, _ = s.do(http.MethodGet, "/api/v1/patrol/hotspots?sample=-3", nil, false)
	assert.Equal(t, http.StatusBadRequest, code)
}
