package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/service"
	"github.com/jengzang/patroliq-backend-go/pkg/response"
)

// TemporalHandler handles HTTP requests for temporal crime patterns
type TemporalHandler struct {
	service *service.TemporalService
}

// NewTemporalHandler creates a new temporal handler
func NewTemporalHandler(service *service.TemporalService) *TemporalHandler {
	return &TemporalHandler{service: service}
}

// GetOverview handles GET /api/v1/temporal/overview
func (h *TemporalHandler) GetOverview(c *gin.Context) {
	var filter models.IncidentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to get temporal overview", err)
		return
	}

	response.Success(c, overview)
}

// GetClusters handles GET /api/v1/temporal/clusters
func (h *TemporalHandler) GetClusters(c *gin.Context) {
	var filter models.IncidentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	clusters, err := h.service.Clusters(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to summarize temporal clusters", err)
		return
	}

	response.Success(c, gin.H{
		"clusters": clusters,
		"count":    len(clusters),
	})
}
