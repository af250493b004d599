package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/themobileprof/mhaas-be/internal/api/middleware"
	"github.com/themobileprof/mhaas-be/internal/audit"
	"github.com/themobileprof/mhaas-be/internal/db"
	"github.com/themobileprof/mhaas-be/internal/pregnancy"
)

// PatientHandler handles patient record endpoints
type PatientHandler struct {
	db    *db.DB
	audit *audit.Logger
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(database *db.DB, auditLogger *audit.Logger) *PatientHandler {
	return &PatientHandler{db: database, audit: auditLogger}
}

// RegisterPatientRequest represents a patient registration request
type RegisterPatientRequest struct {
	Email         string    `json:"email" binding:"required,email"`
	FullName      string    `json:"full_name" binding:"required"`
	PhoneNumber   string    `json:"phone_number" binding:"required"`
	DateOfBirth   time.Time `json:"date_of_birth" binding:"required"`
	MaritalStatus string    `json:"marital_status" binding:"required"`
	LMP           time.Time `json:"lmp" binding:"required"`
	Gravida       int       `json:"gravida"`
	Parity        int       `json:"parity"`
}

// UpdateLMPRequest represents an LMP correction. The EDD is always recomputed
// server-side; it cannot be supplied by the client.
type UpdateLMPRequest struct {
	LMP time.Time `json:"lmp" binding:"required"`
}

// PatientResponse represents a patient record response
type PatientResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	HospitalID    string     `json:"hospital_id"`
	FullName      string     `json:"full_name"`
	PhoneNumber   string     `json:"phone_number"`
	DateOfBirth   time.Time  `json:"date_of_birth"`
	MaritalStatus string     `json:"marital_status"`
	LMP           time.Time  `json:"lmp"`
	EDD           *time.Time `json:"edd,omitempty"`
	CurrentWeek   int        `json:"current_week,omitempty"`
	Gravida       int        `json:"gravida"`
	Parity        int        `json:"parity"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RegisterPatient provisions a patient account and record in one step. The
// generated temporary password is returned once so staff can hand it over.
func (h *PatientHandler) RegisterPatient(c *gin.Context) {
	hospitalID := middleware.GetHospitalID(c)
	if hospitalID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Caller has no hospital scope"})
		return
	}

	var req RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	password, err := generatePassword()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate credentials"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process credentials"})
		return
	}

	user := &db.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.FullName,
		Role:         db.RolePatient,
		HospitalID:   hospitalID,
	}
	if err := h.db.CreateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	patient := &db.Patient{
		UserID:        user.ID,
		HospitalID:    *hospitalID,
		RegisteredBy:  middleware.GetUserID(c),
		FullName:      req.FullName,
		PhoneNumber:   req.PhoneNumber,
		DateOfBirth:   req.DateOfBirth,
		MaritalStatus: req.MaritalStatus,
		LMP:           req.LMP,
		Gravida:       req.Gravida,
		Parity:        req.Parity,
	}

	if err := h.db.CreatePatient(c.Request.Context(), patient); err != nil {
		if errors.Is(err, pregnancy.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid LMP date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register patient"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		fmt.Sprintf("Registered patient %s", patient.FullName), "Patient", &patient.ID)

	c.JSON(http.StatusCreated, gin.H{
		"patient":            patientToResponse(patient, time.Now()),
		"temporary_password": password,
	})
}

// GetPatient returns a single patient record
func (h *PatientHandler) GetPatient(c *gin.Context) {
	patient, err := h.db.GetPatientByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patient"})
		return
	}

	if !h.canAccessPatient(c, patient) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	c.JSON(http.StatusOK, patientToResponse(patient, time.Now()))
}

// ListPatients returns the patients for the caller's hospital; super admins can
// pass ?hospital_id= to pick one.
func (h *PatientHandler) ListPatients(c *gin.Context) {
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

	patients, err := h.db.ListPatientsByHospital(c.Request.Context(), *hospitalID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patients"})
		return
	}

	now := time.Now()
	response := make([]PatientResponse, 0, len(patients))
	for i := range patients {
		response = append(response, patientToResponse(&patients[i], now))
	}

	c.JSON(http.StatusOK, response)
}

// UpdateLMP corrects a patient's LMP and recomputes the due date
func (h *PatientHandler) UpdateLMP(c *gin.Context) {
	var req UpdateLMPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, err := h.db.UpdatePatientLMP(c.Request.Context(), c.Param("id"), req.LMP)
	if err != nil {
		switch {
		case errors.Is(err, pregnancy.ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid LMP date"})
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update patient"})
		}
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		fmt.Sprintf("Updated LMP for patient %s", patient.FullName), "Patient", &patient.ID)

	c.JSON(http.StatusOK, patientToResponse(patient, time.Now()))
}

// DeletePatient removes a patient record
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	id := c.Param("id")
	if err := h.db.DeletePatient(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete patient"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		"Deleted patient record", "Patient", &id)

	c.Status(http.StatusNoContent)
}

// canAccessPatient enforces the hospital boundary: super admins see everything,
// patients only themselves, everyone else only their own hospital.
func (h *PatientHandler) canAccessPatient(c *gin.Context, patient *db.Patient) bool {
	switch middleware.GetUserRole(c) {
	case db.RoleSuperAdmin:
		return true
	case db.RolePatient:
		return patient.UserID == middleware.GetUserID(c)
	default:
		hospitalID := middleware.GetHospitalID(c)
		return hospitalID != nil && *hospitalID == patient.HospitalID
	}
}

func patientToResponse(patient *db.Patient, now time.Time) PatientResponse {
	resp := PatientResponse{
		ID:            patient.ID,
		UserID:        patient.UserID,
		HospitalID:    patient.HospitalID,
		FullName:      patient.FullName,
		PhoneNumber:   patient.PhoneNumber,
		DateOfBirth:   patient.DateOfBirth,
		MaritalStatus: patient.MaritalStatus,
		LMP:           patient.LMP,
		EDD:           patient.EDD,
		Gravida:       patient.Gravida,
		Parity:        patient.Parity,
		CreatedAt:     patient.CreatedAt,
	}
	if patient.EDD != nil {
		resp.CurrentWeek = pregnancy.ComputeGestationalWeek(*patient.EDD, now)
	}
	return resp
}

// generatePassword produces a random temporary password for provisioned accounts
func generatePassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
