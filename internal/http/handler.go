// Package http exposes the forecast service over a Gin REST API.
package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go.ngs.io/gefs-api/internal/adapter/geocode"
	"go.ngs.io/gefs-api/internal/domain"
	"go.ngs.io/gefs-api/internal/usecase"
)

// Handler handles HTTP requests for forecast views.
type Handler struct {
	svc *usecase.ForecastService
	log *zap.SugaredLogger
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc *usecase.ForecastService, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{svc: svc, log: log}
}

// GetTimeSeries handles GET /v1/forecast/timeseries.
func (h *Handler) GetTimeSeries(c *gin.Context) {
	req := usecase.TimeSeriesRequest{
		Variable: c.Query("variable"),
		Location: c.Query("location"),
		Window:   c.Query("window"),
		Mode:     c.Query("mode"),
	}

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
			return
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
			return
		}
		req.Lat = &lat
		req.Lon = &lon
	}

	resp, err := h.svc.TimeSeries(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetGrid handles GET /v1/forecast/grid.
func (h *Handler) GetGrid(c *gin.Context) {
	req := usecase.GridRequest{
		Variable: c.Query("variable"),
		Window:   c.Query("window"),
		Stat:     c.Query("stat"),
	}

	if stepStr := c.Query("step"); stepStr != "" {
		step, err := strconv.Atoi(stepStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid step: %v", err)})
			return
		}
		req.Step = step
	}

	resp, err := h.svc.Grid(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetLocations handles GET /v1/locations.
func (h *Handler) GetLocations(c *gin.Context) {
	cities := h.svc.Cities()
	c.JSON(http.StatusOK, gin.H{
		"locations": cities,
		"count":     len(cities),
	})
}

// GetVariables handles GET /v1/variables.
func (h *Handler) GetVariables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"variables": usecase.Variables,
		"count":     len(usecase.Variables),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError maps service errors to HTTP statuses: bad input is 400,
// unknown names are 404, everything else is a 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		validationErr *usecase.ValidationError
		windowErr     *domain.InvalidWindowFormatError
		unitErr       *domain.UnsupportedUnitError
		axisErr       *domain.AxisNotFoundError
		cityErr       *geocode.NotFoundError
		varErr        *usecase.UnknownVariableError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &windowErr),
		errors.As(err, &unitErr),
		errors.As(err, &axisErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &cityErr), errors.As(err, &varErr):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Errorw("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
