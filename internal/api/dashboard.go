package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/themobileprof/mhaas-be/internal/api/middleware"
	"github.com/themobileprof/mhaas-be/internal/db"
)

// DashboardHandler handles dashboard and activity log endpoints
type DashboardHandler struct {
	db *db.DB
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(database *db.DB) *DashboardHandler {
	return &DashboardHandler{db: database}
}

// GetStats returns the summary counts for the caller's dashboard. Super admins
// get system-wide counts; everyone else gets their hospital's.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	hospitalID := middleware.GetHospitalID(c)
	if middleware.GetUserRole(c) == db.RoleSuperAdmin {
		hospitalID = nil
		if q := c.Query("hospital_id"); q != "" {
			hospitalID = &q
		}
	}

	stats, err := h.db.GetDashboardStats(c.Request.Context(), hospitalID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// LogEntryResponse represents an activity log record
type LogEntryResponse struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID *string   `json:"resource_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListLogs returns the most recent activity log entries
func (h *DashboardHandler) ListLogs(c *gin.Context) {
	limit := 50
	if q := c.Query("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.db.ListLogEntries(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	response := make([]LogEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, LogEntryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			Action:     e.Action,
			Resource:   e.Resource,
			ResourceID: e.ResourceID,
			CreatedAt:  e.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}
