package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// HealthHandler reports whether the databases answer
type HealthHandler struct {
	db    *gorm.DB
	mongo *mongo.Client
}

// NewHealthHandler creates a new HealthHandler. mongo may be nil.
func NewHealthHandler(db *gorm.DB, mongo *mongo.Client) *HealthHandler {
	return &HealthHandler{db: db, mongo: mongo}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	status := http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if h.mongo != nil {
		checks["mongo"] = "ok"
		if err := h.mongo.Ping(ctx, nil); err != nil {
			checks["mongo"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	return c.JSON(status, echo.Map{
		"status":  state,
		"service": "blogsphere-api",
		"checks":  checks,
	})
}
