package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/themobileprof/mhaas-be/internal/api/middleware"
	"github.com/themobileprof/mhaas-be/internal/audit"
	"github.com/themobileprof/mhaas-be/internal/db"
)

// HospitalHandler handles hospital management endpoints
type HospitalHandler struct {
	db    *db.DB
	audit *audit.Logger
}

// NewHospitalHandler creates a new hospital handler
func NewHospitalHandler(database *db.DB, auditLogger *audit.Logger) *HospitalHandler {
	return &HospitalHandler{db: database, audit: auditLogger}
}

// HospitalRequest represents a hospital create/update request
type HospitalRequest struct {
	Name    string  `json:"name" binding:"required"`
	Code    string  `json:"code" binding:"required"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// HospitalResponse represents a hospital response
type HospitalResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateHospital registers a new hospital
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	var req HospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hospital := &db.Hospital{
		Name:    req.Name,
		Code:    req.Code,
		Address: req.Address,
		Phone:   req.Phone,
	}

	if err := h.db.CreateHospital(c.Request.Context(), hospital); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Hospital code already in use"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		fmt.Sprintf("Created hospital %s (%s)", hospital.Name, hospital.Code),
		"Hospital", &hospital.ID)

	c.JSON(http.StatusCreated, hospitalToResponse(hospital))
}

// ListHospitals returns all registered hospitals
func (h *HospitalHandler) ListHospitals(c *gin.Context) {
	hospitals, err := h.db.ListHospitals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hospitals"})
		return
	}

	response := make([]HospitalResponse, 0, len(hospitals))
	for i := range hospitals {
		response = append(response, hospitalToResponse(&hospitals[i]))
	}

	c.JSON(http.StatusOK, response)
}

// GetHospital returns a single hospital
func (h *HospitalHandler) GetHospital(c *gin.Context) {
	hospital, err := h.db.GetHospitalByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hospital not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hospital"})
		return
	}

	c.JSON(http.StatusOK, hospitalToResponse(hospital))
}

// UpdateHospital updates a hospital's details
func (h *HospitalHandler) UpdateHospital(c *gin.Context) {
	var req HospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hospital := &db.Hospital{
		ID:      c.Param("id"),
		Name:    req.Name,
		Code:    req.Code,
		Address: req.Address,
		Phone:   req.Phone,
	}

	if err := h.db.UpdateHospital(c.Request.Context(), hospital); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hospital not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update hospital"})
		return
	}

	c.JSON(http.StatusOK, hospitalToResponse(hospital))
}

// DeleteHospital removes a hospital
func (h *HospitalHandler) DeleteHospital(c *gin.Context) {
	id := c.Param("id")
	if err := h.db.DeleteHospital(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hospital not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete hospital"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		"Deleted hospital", "Hospital", &id)

	c.Status(http.StatusNoContent)
}

func hospitalToResponse(hospital *db.Hospital) HospitalResponse {
	return HospitalResponse{
		ID:        hospital.ID,
		Name:      hospital.Name,
		Code:      hospital.Code,
		Address:   hospital.Address,
		Phone:     hospital.Phone,
		CreatedAt: hospital.CreatedAt,
	}
}
