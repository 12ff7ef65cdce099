package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/apperr"
)

// Controller handles general HTTP requests.
type Controller struct{}

// New creates a new Controller.
func New() *Controller {
	return &Controller{}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// respondError writes err with the status matching its type.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *apperr.ValidationError
		notFoundErr   *apperr.NotFoundError
		conflictErr   *apperr.ConflictError
		upstreamErr   *apperr.UpstreamError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error(), "field": conflictErr.Field})
	case errors.As(err, &upstreamErr):
		slog.Error("Upstream failure", slog.String("path", c.Request.URL.Path), slog.Any("err", err))
		c.JSON(http.StatusBadGateway, gin.H{"error": upstreamErr.Dependency + " is unavailable"})
	default:
		slog.Error("Request failed", slog.String("path", c.Request.URL.Path), slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
	_ = c.Error(err)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return 0, false
	}
	return id, true
}
