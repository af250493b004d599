package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/themobileprof/mhaas-be/internal/api/middleware"
	"github.com/themobileprof/mhaas-be/internal/audit"
	"github.com/themobileprof/mhaas-be/internal/db"
)

// StaffHandler handles staff account management
type StaffHandler struct {
	db    *db.DB
	audit *audit.Logger
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(database *db.DB, auditLogger *audit.Logger) *StaffHandler {
	return &StaffHandler{db: database, audit: auditLogger}
}

// CreateStaffRequest represents a staff provisioning request
type CreateStaffRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	// Role is staff by default; hospital admins may only create staff, super
	// admins may also create hospital admins.
	Role       string  `json:"role"`
	HospitalID *string `json:"hospital_id"`
}

// CreateStaff provisions a staff or hospital-admin account with a generated
// temporary password.
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = db.RoleStaff
	}
	if role != db.RoleStaff && role != db.RoleHospitalAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be staff or hospitaladmin"})
		return
	}
	if role == db.RoleHospitalAdmin && middleware.GetUserRole(c) != db.RoleSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only super admins can create hospital admins"})
		return
	}

	hospitalID := middleware.GetHospitalID(c)
	if middleware.GetUserRole(c) == db.RoleSuperAdmin {
		hospitalID = req.HospitalID
	}
	if hospitalID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hospital_id is required"})
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
		Name:         req.Name,
		Role:         role,
		HospitalID:   hospitalID,
	}

	if err := h.db.CreateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		fmt.Sprintf("Provisioned %s account for %s", role, user.Name), "User", &user.ID)

	c.JSON(http.StatusCreated, gin.H{
		"user":               userToInfo(user),
		"temporary_password": password,
	})
}

// ListStaff returns the staff accounts for a hospital
func (h *StaffHandler) ListStaff(c *gin.Context) {
	hospitalID := middleware.GetHospitalID(c)
	if middleware.GetUserRole(c) == db.RoleSuperAdmin {
		if q := c.Query("hospital_id"); q != "" {
			hospitalID = &q
		}
	}

	users, err := h.db.ListUsersByRole(c.Request.Context(), db.RoleStaff, hospitalID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch staff"})
		return
	}

	response := make([]*UserInfo, 0, len(users))
	for i := range users {
		response = append(response, userToInfo(&users[i]))
	}

	c.JSON(http.StatusOK, response)
}

// DeleteStaff removes a staff account
func (h *StaffHandler) DeleteStaff(c *gin.Context) {
	id := c.Param("id")
	if err := h.db.DeleteUser(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff account not found"})
		return
	}

	h.audit.LogActivity(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c),
		"Deleted staff account", "User", &id)

	c.Status(http.StatusNoContent)
}
