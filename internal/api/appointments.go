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

// AppointmentHandler handles appointment endpoints
type AppointmentHandler struct {
	db    *db.DB
	audit *audit.Logger
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(database *db.DB, auditLogger *audit.Logger) *AppointmentHandler {
	return &AppointmentHandler{db: database, audit: auditLogger}
}

// CreateAppointmentRequest represents an appointment creation request
type CreateAppointmentRequest struct {
	PatientID   string    `json:"patient_id" binding:"required"`
	Type        string    `json:"type" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Notes       *string   `json:"notes"`
}

// UpdateAppointmentRequest represents an appointment update request
type UpdateAppointmentRequest struct {
	Type        *string    `json:"type"`
	Status      *string    `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Notes       *string    `json:"notes"`
}

// AppointmentResponse represents an appointment response
type AppointmentResponse struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	HospitalID  string    `json:"hospital_id"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateAppointment schedules a new appointment
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !contains(db.AppointmentTypes, req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment type"})
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

	appt := &db.Appointment{
		PatientID:   patient.ID,
		HospitalID:  patient.HospitalID,
		Type:        req.Type,
		Status:      "Scheduled",
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
		CreatedBy:   middleware.GetUserID(c),
	}

	if err := h.db.CreateAppointment(c.Request.Context(), appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create appointment"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		fmt.Sprintf("Scheduled %s for %s", appt.Type, patient.FullName),
		"Appointment", &appt.ID)

	c.JSON(http.StatusCreated, appointmentToResponse(appt))
}

// ListAppointments returns the appointments for the caller's scope
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	ctx := c.Request.Context()

	if middleware.GetUserRole(c) == db.RolePatient {
		patient, err := h.db.GetPatientByUserID(ctx, middleware.GetUserID(c))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient record not found"})
			return
		}
		appts, err := h.db.ListAppointmentsByPatient(ctx, patient.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
			return
		}
		c.JSON(http.StatusOK, appointmentsToResponse(appts))
		return
	}

	hospitalID := middleware.GetHospitalID(c)
	if middleware.GetUserRole(c) == db.RoleSuperAdmin {
		if q := c.Query("hospital_id"); q != "" {
			hospitalID = &q
		}
	}
	if hospitalID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hospital_id is required"})
		return
	}

	appts, err := h.db.ListAppointmentsByHospital(ctx, *hospitalID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
		return
	}

	c.JSON(http.StatusOK, appointmentsToResponse(appts))
}

// UpdateAppointment updates an appointment's type, status, time or notes
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.db.GetAppointmentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointment"})
		return
	}

	if req.Type != nil {
		if !contains(db.AppointmentTypes, *req.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment type"})
			return
		}
		appt.Type = *req.Type
	}
	if req.Status != nil {
		if !contains(db.AppointmentStatuses, *req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment status"})
			return
		}
		appt.Status = *req.Status
	}
	if req.ScheduledAt != nil {
		appt.ScheduledAt = *req.ScheduledAt
	}
	if req.Notes != nil {
		appt.Notes = req.Notes
	}

	if err := h.db.UpdateAppointment(c.Request.Context(), appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update appointment"})
		return
	}

	c.JSON(http.StatusOK, appointmentToResponse(appt))
}

// DeleteAppointment removes an appointment
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	id := c.Param("id")
	if err := h.db.DeleteAppointment(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete appointment"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		"Deleted appointment", "Appointment", &id)

	c.Status(http.StatusNoContent)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func appointmentToResponse(appt *db.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          appt.ID,
		PatientID:   appt.PatientID,
		HospitalID:  appt.HospitalID,
		Type:        appt.Type,
		Status:      appt.Status,
		ScheduledAt: appt.ScheduledAt,
		Notes:       appt.Notes,
		CreatedAt:   appt.CreatedAt,
	}
}

func appointmentsToResponse(appts []db.Appointment) []AppointmentResponse {
	response := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		response = append(response, appointmentToResponse(&appts[i]))
	}
	return response
}
