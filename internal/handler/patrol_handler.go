package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/service"
	"github.com/jengzang/patroliq-backend-go/pkg/response"
)

// PatrolHandler handles HTTP requests for patrol recommendations
type PatrolHandler struct {
	service *service.PatrolService
}

// NewPatrolHandler creates a new patrol handler
func NewPatrolHandler(service *service.PatrolService) *PatrolHandler {
	return &PatrolHandler{service: service}
}

// GetHotspots handles GET /api/v1/patrol/hotspots
func (h *PatrolHandler) GetHotspots(c *gin.Context) {
	var q models.HotspotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	resp, err := h.service.Hotspots(c.Request.Context(), q)
	if err != nil {
		respondError(c, "Failed to compute hotspots", err)
		return
	}

	response.Success(c, resp)
}

// GetZones handles GET /api/v1/patrol/zones
func (h *PatrolHandler) GetZones(c *gin.Context) {
	var q models.ZoneQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	zones, err := h.service.Zones(c.Request.Context(), q)
	if err != nil {
		respondError(c, "Failed to build patrol zones", err)
		return
	}

	response.Success(c, gin.H{
		"zones": zones,
		"count": len(zones),
	})
}

// GetBriefing handles GET /api/v1/patrol/briefing
func (h *PatrolHandler) GetBriefing(c *gin.Context) {
	var q models.ZoneQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	brief, err := h.service.Briefing(c.Request.Context(), q)
	if err != nil {
		respondError(c, "Failed to build briefing", err)
		return
	}

	response.Success(c, brief)
}
