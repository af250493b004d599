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

// maxReminderMessageLen caps reminder messages so they fit an SMS comfortably.
const maxReminderMessageLen = 300

// ReminderHandler handles reminder endpoints
type ReminderHandler struct {
	db    *db.DB
	audit *audit.Logger
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(database *db.DB, auditLogger *audit.Logger) *ReminderHandler {
	return &ReminderHandler{db: database, audit: auditLogger}
}

// CreateReminderRequest represents a reminder creation request
type CreateReminderRequest struct {
	PatientID     string    `json:"patient_id" binding:"required"`
	Type          string    `json:"type" binding:"required"`
	Message       string    `json:"message" binding:"required"`
	ScheduledTime time.Time `json:"scheduled_time" binding:"required"`
}

// UpdateReminderRequest represents a reminder update request
type UpdateReminderRequest struct {
	Type          *string    `json:"type"`
	Message       *string    `json:"message"`
	ScheduledTime *time.Time `json:"scheduled_time"`
}

// ReminderResponse represents a reminder response
type ReminderResponse struct {
	ID            string     `json:"id"`
	PatientID     string     `json:"patient_id"`
	HospitalID    string     `json:"hospital_id"`
	Type          string     `json:"type"`
	Message       string     `json:"message"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Sent          bool       `json:"sent"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateReminder schedules a new patient reminder
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !validReminderType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder type"})
		return
	}
	if len(req.Message) > maxReminderMessageLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message exceeds 300 characters"})
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

	reminder := &db.Reminder{
		PatientID:     patient.ID,
		HospitalID:    patient.HospitalID,
		Type:          req.Type,
		Message:       req.Message,
		ScheduledTime: req.ScheduledTime,
		CreatedBy:     middleware.GetUserID(c),
	}

	if err := h.db.CreateReminder(c.Request.Context(), reminder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reminder"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		fmt.Sprintf("Scheduled %s reminder for %s", reminder.Type, patient.FullName),
		"Reminder", &reminder.ID)

	c.JSON(http.StatusCreated, reminderToResponse(reminder))
}

// ListReminders returns the reminders for the caller's scope: a patient sees
// their own, staff and admins see their hospital's.
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	ctx := c.Request.Context()

	if middleware.GetUserRole(c) == db.RolePatient {
		patient, err := h.db.GetPatientByUserID(ctx, middleware.GetUserID(c))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient record not found"})
			return
		}
		reminders, err := h.db.ListRemindersByPatient(ctx, patient.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reminders"})
			return
		}
		c.JSON(http.StatusOK, remindersToResponse(reminders))
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

	reminders, err := h.db.ListRemindersByHospital(ctx, *hospitalID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reminders"})
		return
	}

	c.JSON(http.StatusOK, remindersToResponse(reminders))
}

// UpdateReminder edits an unsent reminder
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder, err := h.db.GetReminderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reminder"})
		return
	}

	if reminder.Sent {
		c.JSON(http.StatusConflict, gin.H{"error": "Reminder already sent"})
		return
	}

	if req.Type != nil {
		if !validReminderType(*req.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder type"})
			return
		}
		reminder.Type = *req.Type
	}
	if req.Message != nil {
		if len(*req.Message) > maxReminderMessageLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message exceeds 300 characters"})
			return
		}
		reminder.Message = *req.Message
	}
	if req.ScheduledTime != nil {
		reminder.ScheduledTime = *req.ScheduledTime
	}

	if err := h.db.UpdateReminder(c.Request.Context(), reminder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reminder"})
		return
	}

	c.JSON(http.StatusOK, reminderToResponse(reminder))
}

// DeleteReminder removes a reminder
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	id := c.Param("id")
	if err := h.db.DeleteReminder(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reminder"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		"Deleted reminder", "Reminder", &id)

	c.Status(http.StatusNoContent)
}

func validReminderType(t string) bool {
	for _, v := range db.ReminderTypes {
		if v == t {
			return true
		}
	}
	return false
}

func reminderToResponse(r *db.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:            r.ID,
		PatientID:     r.PatientID,
		HospitalID:    r.HospitalID,
		Type:          r.Type,
		Message:       r.Message,
		ScheduledTime: r.ScheduledTime,
		Sent:          r.Sent,
		SentAt:        r.SentAt,
		CreatedAt:     r.CreatedAt,
	}
}

func remindersToResponse(reminders []db.Reminder) []ReminderResponse {
	response := make([]ReminderResponse, 0, len(reminders))
	for i := range reminders {
		response = append(response, reminderToResponse(&reminders[i]))
	}
	return response
}
