package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
)

type telemetryService interface {
	GetLatest(ctx context.Context, carID string) (*domain.CarUpdate, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.CarUpdate, error)
	GetAllCars(ctx context.Context) ([]domain.Car, error)
}

type accidentService interface {
	ActiveAccidents() []domain.Accident
}

type FleetHandler struct {
	telemetry telemetryService
	accidents accidentService
}

func NewFleetHandler(telemetry telemetryService, accidents accidentService) *FleetHandler {
	return &FleetHandler{telemetry: telemetry, accidents: accidents}
}

func (h *FleetHandler) Register(r *gin.RouterGroup) {
	r.GET("/cars", h.GetAllCars)
	r.GET("/cars/:car_id/position", h.GetLatestPosition)
	r.GET("/cars/:car_id/history", h.GetHistory)
	r.GET("/accidents", h.GetActiveAccidents)
}

func (h *FleetHandler) GetAllCars(c *gin.Context) {
	cars, err := h.telemetry.GetAllCars(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cars"})
		return
	}

	c.JSON(http.StatusOK, cars)
}

func (h *FleetHandler) GetLatestPosition(c *gin.Context) {
	carID := c.Param("car_id")

	u, err := h.telemetry.GetLatest(c.Request.Context(), carID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "car not found"})
		return
	}

	c.JSON(http.StatusOK, u)
}

func (h *FleetHandler) GetHistory(c *gin.Context) {
	carID := c.Param("car_id")

	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	query := &domain.HistoryQuery{
		CarID: carID,
		Start: time.Unix(start, 0),
		End:   time.Unix(end, 0),
	}

	updates, err := h.telemetry.GetHistory(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, updates)
}

func (h *FleetHandler) GetActiveAccidents(c *gin.Context) {
	accidents := h.accidents.ActiveAccidents()
	if accidents == nil {
		accidents = []domain.Accident{}
	}
	c.JSON(http.StatusOK, accidents)
}
