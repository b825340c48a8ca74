package http

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"deckhand/internal/database"
	"deckhand/internal/uploads"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports readiness of the database and the upload store.
type HealthController struct {
	db      *database.Database
	store   *uploads.Store
	version string
}

func NewHealthController(db *database.Database, store *uploads.Store, version string) *HealthController {
	return &HealthController{
		db:      db,
		store:   store,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := map[string]string{
		"database": h.checkDatabase(),
		"uploads":  h.checkUploads(),
	}

	status := "healthy"
	statusCode := http.StatusOK
	for _, result := range checks {
		if result != "ok" && result != "not configured" {
			status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.IndentedJSON(statusCode, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}

func (h *HealthController) checkDatabase() string {
	if h.db == nil {
		return "not configured"
	}
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	if err := sqlDB.Ping(); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (h *HealthController) checkUploads() string {
	if h.store == nil {
		return "not configured"
	}
	if _, err := os.Stat(h.store.Dir()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
