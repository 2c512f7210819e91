package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/service"
	"github.com/jengzang/patroliq-backend-go/pkg/response"
)

// AnalysisHandler handles HTTP requests for exploratory statistics
type AnalysisHandler struct {
	service    *service.AnalysisService
	projection *service.ProjectionService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *service.AnalysisService, projection *service.ProjectionService) *AnalysisHandler {
	return &AnalysisHandler{service: service, projection: projection}
}

// GetSummary handles GET /api/v1/analysis/summary
func (h *AnalysisHandler) GetSummary(c *gin.Context) {
	var filter models.IncidentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to get crime summary", err)
		return
	}

	response.Success(c, summary)
}

// GetHeatmap handles GET /api/v1/analysis/heatmap
func (h *AnalysisHandler) GetHeatmap(c *gin.Context) {
	var q models.HeatmapQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	heatmap, err := h.service.Heatmap(c.Request.Context(), q)
	if err != nil {
		respondError(c, "Failed to get heatmap", err)
		return
	}

	response.Success(c, heatmap)
}

// GetSeverity handles GET /api/v1/analysis/severity
func (h *AnalysisHandler) GetSeverity(c *gin.Context) {
	var filter models.IncidentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	severity, err := h.service.Severity(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to get severity", err)
		return
	}

	response.Success(c, gin.H{
		"data":  severity,
		"count": len(severity),
	})
}

// GetProjection handles GET /api/v1/analysis/projection
func (h *AnalysisHandler) GetProjection(c *gin.Context) {
	var q models.ProjectionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	projection, err := h.projection.Projection(c.Request.Context(), q)
	if err != nil {
		respondError(c, "Failed to project incidents", err)
		return
	}

	response.Success(c, projection)
}
