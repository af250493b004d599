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

// VisitHandler handles visit record endpoints
type VisitHandler struct {
	db    *db.DB
	audit *audit.Logger
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(database *db.DB, auditLogger *audit.Logger) *VisitHandler {
	return &VisitHandler{db: database, audit: auditLogger}
}

// CreateVisitRequest represents a visit record creation request
type CreateVisitRequest struct {
	PatientID string    `json:"patient_id" binding:"required"`
	Type      string    `json:"type" binding:"required"`
	VisitDate time.Time `json:"visit_date" binding:"required"`
	Notes     *string   `json:"notes"`
}

// VisitResponse represents a visit record response
type VisitResponse struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	HospitalID string    `json:"hospital_id"`
	Type       string    `json:"type"`
	VisitDate  time.Time `json:"visit_date"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateVisit records a completed clinic visit
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	var req CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !contains(db.VisitTypes, req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visit type"})
		return
	}

	patient, err := h.db.GetPatientByID(c.Request.Context(), req.PatientID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve patient"})
		return
	}

	visit := &db.Visit{
		PatientID:  patient.ID,
		HospitalID: patient.HospitalID,
		Type:       req.Type,
		Notes:      req.Notes,
		VisitDate:  req.VisitDate,
		RecordedBy: middleware.GetUserID(c),
	}

	if err := h.db.CreateVisit(c.Request.Context(), visit); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record visit"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		fmt.Sprintf("Recorded %s visit for %s", visit.Type, patient.FullName),
		"Visit", &visit.ID)

	c.JSON(http.StatusCreated, visitToResponse(visit))
}

// GetVisit returns a single visit record
func (h *VisitHandler) GetVisit(c *gin.Context) {
	visit, err := h.db.GetVisitByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Visit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch visit"})
		return
	}

	c.JSON(http.StatusOK, visitToResponse(visit))
}

// ListVisits returns a patient's visit history
func (h *VisitHandler) ListVisits(c *gin.Context) {
	visits, err := h.db.ListVisitsByPatient(c.Request.Context(), c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch visits"})
		return
	}

	response := make([]VisitResponse, 0, len(visits))
	for i := range visits {
		response = append(response, visitToResponse(&visits[i]))
	}

	c.JSON(http.StatusOK, response)
}

// DeleteVisit removes a visit record
func (h *VisitHandler) DeleteVisit(c *gin.Context) {
	id := c.Param("id")
	if err := h.db.DeleteVisit(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Visit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete visit"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		"Deleted visit record", "Visit", &id)

	c.Status(http.StatusNoContent)
}

func visitToResponse(visit *db.Visit) VisitResponse {
	return VisitResponse{
		ID:         visit.ID,
		PatientID:  visit.PatientID,
		HospitalID: visit.HospitalID,
		Type:       visit.Type,
		VisitDate:  visit.VisitDate,
		Notes:      visit.Notes,
		CreatedAt:  visit.CreatedAt,
	}
}
