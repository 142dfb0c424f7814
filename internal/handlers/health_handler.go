package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/stackpad/backend/internal/database"
	"github.com/stackpad/backend/internal/dto"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports liveness plus store connectivity. A failing database
// degrades the body to "unhealthy" but never turns into an error status.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbHealth := dto.DatabaseHealth{
		Status:  "healthy",
		Message: "Database connection successful",
	}
	status := "healthy"
	if err := database.Ping(h.db); err != nil {
		dbHealth.Status = "unhealthy"
		dbHealth.Message = "Database connection failed: " + err.Error()
		status = "unhealthy"
	}

	return c.JSON(dto.HealthResponse{
		Status:   status,
		Message:  "Backend is running",
		Database: dbHealth,
	})
}
