package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/registry"
	"github.com/jengzang/patroliq-backend-go/pkg/response"
)

// RegistryHandler handles experiment tracking and model registry requests
type RegistryHandler struct {
	registry *registry.Registry
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(reg *registry.Registry) *RegistryHandler {
	return &RegistryHandler{registry: reg}
}

// GetExperiment handles GET /api/v1/experiments/:name
func (h *RegistryHandler) GetExperiment(c *gin.Context) {
	exp, err := h.registry.GetExperimentByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, "Failed to get experiment", err)
		return
	}
	response.Success(c, exp)
}

// GetRuns handles GET /api/v1/experiments/:name/runs
func (h *RegistryHandler) GetRuns(c *gin.Context) {
	runs, err := h.registry.RunsForExperiment(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, "Failed to get runs", err)
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}

	response.Success(c, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun handles GET /api/v1/runs/:id
func (h *RegistryHandler) GetRun(c *gin.Context) {
	run, err := h.registry.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to get run", err)
		return
	}
	response.Success(c, run)
}

// ListModels handles GET /api/v1/models
func (h *RegistryHandler) ListModels(c *gin.Context) {
	list, err := h.registry.ListRegisteredModels(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list models", err)
		return
	}
	if list == nil {
		list = []models.RegisteredModel{}
	}

	response.Success(c, gin.H{
		"models": list,
		"count":  len(list),
	})
}

// GetVersions handles GET /api/v1/models/:name/versions
func (h *RegistryHandler) GetVersions(c *gin.Context) {
	versions, err := h.registry.LatestVersions(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, "Failed to get model versions", err)
		return
	}

	response.Success(c, gin.H{
		"versions": versions,
		"count":    len(versions),
	})
}

// CreateExperiment handles POST /api/v1/experiments
func (h *RegistryHandler) CreateExperiment(c *gin.Context) {
	var req models.CreateExperimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	exp, err := h.registry.CreateExperiment(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, "Failed to create experiment", err)
		return
	}
	response.Created(c, exp)
}

// LogRun handles POST /api/v1/experiments/:name/runs
func (h *RegistryHandler) LogRun(c *gin.Context) {
	var req models.LogRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	run, err := h.registry.LogRun(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		respondError(c, "Failed to log run", err)
		return
	}
	response.Created(c, run)
}

// RegisterVersion handles POST /api/v1/models/:name/versions
func (h *RegistryHandler) RegisterVersion(c *gin.Context) {
	var req models.RegisterVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	v, err := h.registry.RegisterVersion(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		respondError(c, "Failed to register model version", err)
		return
	}
	response.Created(c, v)
}
