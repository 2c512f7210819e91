package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/patroliq-backend-go/internal/clustering"
	"github.com/jengzang/patroliq-backend-go/internal/dataset"
	"github.com/jengzang/patroliq-backend-go/internal/patrol"
	"github.com/jengzang/patroliq-backend-go/internal/registry"
	"github.com/jengzang/patroliq-backend-go/pkg/response"
)

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, patrol.ErrInvalidArgument),
		errors.Is(err, patrol.ErrInvalidInput),
		errors.Is(err, dataset.ErrInvalidInput),
		errors.Is(err, registry.ErrInvalidPayload),
		errors.Is(err, registry.ErrInvalidRequest),
		errors.Is(err, clustering.ErrInvalidFeature):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrModelNotFound),
		errors.Is(err, registry.ErrExperimentNotFound),
		errors.Is(err, registry.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrExperimentExists),
		errors.Is(err, registry.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, clustering.ErrMissingLabel):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		response.InternalError(c, message, err)
		return
	}
	response.Error(c, status, message, err)
}
