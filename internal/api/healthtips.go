package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/themobileprof/mhaas-be/internal/api/middleware"
	"github.com/themobileprof/mhaas-be/internal/audit"
	"github.com/themobileprof/mhaas-be/internal/db"
	"github.com/themobileprof/mhaas-be/internal/pregnancy"
	"github.com/themobileprof/mhaas-be/internal/tips"
)

// HealthTipHandler handles health tip endpoints
type HealthTipHandler struct {
	db      *db.DB
	service *tips.Service
	audit   *audit.Logger
}

// NewHealthTipHandler creates a new health tip handler
func NewHealthTipHandler(database *db.DB, service *tips.Service, auditLogger *audit.Logger) *HealthTipHandler {
	return &HealthTipHandler{db: database, service: service, audit: auditLogger}
}

// CreateHealthTipRequest represents a manual tip creation request
type CreateHealthTipRequest struct {
	Title        string   `json:"title" binding:"required,max=100"`
	Content      string   `json:"content" binding:"required,max=1000"`
	Tags         []string `json:"tags"`
	RelevantWeek *int     `json:"relevant_week"`
}

// UpdateHealthTipRequest represents a tip update request
type UpdateHealthTipRequest struct {
	Title        *string  `json:"title"`
	Content      *string  `json:"content"`
	Tags         []string `json:"tags"`
	RelevantWeek *int     `json:"relevant_week"`
}

// HealthTipResponse represents a health tip response
type HealthTipResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	RelevantWeek *int      `json:"relevant_week,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateHealthTip creates a tip authored by staff or an admin
func (h *HealthTipHandler) CreateHealthTip(c *gin.Context) {
	var req CreateHealthTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RelevantWeek != nil &&
		(*req.RelevantWeek < pregnancy.MinWeek || *req.RelevantWeek > pregnancy.MaxWeek) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "relevant_week must be between 1 and 42"})
		return
	}

	tip := &db.HealthTip{
		Title:        req.Title,
		Content:      req.Content,
		Tags:         req.Tags,
		RelevantWeek: req.RelevantWeek,
		CreatedBy:    middleware.GetUserID(c),
	}

	if err := h.db.CreateHealthTip(c.Request.Context(), tip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create health tip"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		fmt.Sprintf("Created health tip %q", tip.Title), "HealthTip", &tip.ID)

	c.JSON(http.StatusCreated, tipToResponse(tip))
}

// GetHealthTip returns a single health tip
func (h *HealthTipHandler) GetHealthTip(c *gin.Context) {
	tip, err := h.db.GetHealthTipByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Health tip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch health tip"})
		return
	}

	c.JSON(http.StatusOK, tipToResponse(tip))
}

// UpdateHealthTip edits a tip's title, content, tags or week
func (h *HealthTipHandler) UpdateHealthTip(c *gin.Context) {
	var req UpdateHealthTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tip, err := h.db.GetHealthTipByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Health tip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch health tip"})
		return
	}

	if req.Title != nil {
		tip.Title = *req.Title
	}
	if req.Content != nil {
		tip.Content = *req.Content
	}
	if req.Tags != nil {
		tip.Tags = req.Tags
	}
	if req.RelevantWeek != nil {
		if *req.RelevantWeek < pregnancy.MinWeek || *req.RelevantWeek > pregnancy.MaxWeek {
			c.JSON(http.StatusBadRequest, gin.H{"error": "relevant_week must be between 1 and 42"})
			return
		}
		tip.RelevantWeek = req.RelevantWeek
	}

	if err := h.db.UpdateHealthTip(c.Request.Context(), tip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update health tip"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		fmt.Sprintf("Updated health tip %q", tip.Title), "HealthTip", &tip.ID)

	c.JSON(http.StatusOK, tipToResponse(tip))
}

// GetPersonalizedTips returns the tips for the caller's current pregnancy week
func (h *HealthTipHandler) GetPersonalizedTips(c *gin.Context) {
	result, err := h.service.GetPersonalizedTips(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tips"})
		return
	}

	c.JSON(http.StatusOK, tipsToResponse(result))
}

// GetTipsByWeek returns all tips pinned to a specific gestational week
func (h *HealthTipHandler) GetTipsByWeek(c *gin.Context) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Week must be a number"})
		return
	}

	result, err := h.service.GetTipsByWeek(c.Request.Context(), week)
	if err != nil {
		if errors.Is(err, tips.ErrWeekOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tips"})
		return
	}

	c.JSON(http.StatusOK, tipsToResponse(result))
}

// ListRecentTips returns the newest tips
func (h *HealthTipHandler) ListRecentTips(c *gin.Context) {
	limit := 20
	if q := c.Query("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	result, err := h.db.ListRecentHealthTips(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tips"})
		return
	}

	c.JSON(http.StatusOK, tipsToResponse(result))
}

// DeleteHealthTip removes a tip
func (h *HealthTipHandler) DeleteHealthTip(c *gin.Context) {
	id := c.Param("id")
	if err := h.db.DeleteHealthTip(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Health tip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete health tip"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		"Deleted health tip", "HealthTip", &id)

	c.Status(http.StatusNoContent)
}

func tipToResponse(tip *db.HealthTip) HealthTipResponse {
	tags := tip.Tags
	if tags == nil {
		tags = []string{}
	}
	return HealthTipResponse{
		ID:           tip.ID,
		Title:        tip.Title,
		Content:      tip.Content,
		Tags:         tags,
		RelevantWeek: tip.RelevantWeek,
		CreatedBy:    tip.CreatedBy,
		CreatedAt:    tip.CreatedAt,
	}
}

func tipsToResponse(result []db.HealthTip) []HealthTipResponse {
	response := make([]HealthTipResponse, 0, len(result))
	for i := range result {
		response = append(response, tipToResponse(&result[i]))
	}
	return response
}
