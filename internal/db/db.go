package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Config holds database configuration
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// User roles
const (
	RoleSuperAdmin    = "superadmin"
	RoleHospitalAdmin = "hospitaladmin"
	RoleStaff         = "staff"
	RolePatient       = "patient"
)

// Reminder types
const (
	ReminderAppointment = "Appointment"
	ReminderHealthTip   = "Health Tip"
	ReminderMedication  = "Medication"
	ReminderOther       = "Other"
)

// ReminderTypes lists the accepted reminder type values.
var ReminderTypes = []string{ReminderAppointment, ReminderHealthTip, ReminderMedication, ReminderOther}

// AppointmentTypes lists the accepted appointment type values.
var AppointmentTypes = []string{"Antenatal Checkup", "Postnatal Checkup", "Vaccination", "Consultation", "Other"}

// AppointmentStatuses lists the accepted appointment status values.
var AppointmentStatuses = []string{"Scheduled", "Completed", "Cancelled", "Rescheduled"}

// VisitTypes lists the accepted visit type values.
var VisitTypes = []string{"Antenatal", "Postnatal", "Delivery", "Emergency", "Other"}

// New creates a new database connection from discrete settings
func New(cfg Config) (*DB, error) {
	return open(cfg.dsn(), cfg)
}

func (cfg Config) dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)
}

// NewFromURL creates a new database connection from a connection URL
func NewFromURL(url string) (*DB, error) {
	return open(url, Config{MaxConnections: 25, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute})
}

func open(dsn string, cfg Config) (*DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// User represents an account in the database
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	HospitalID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Hospital represents a registered clinic or hospital
type Hospital struct {
	ID        string
	Name      string
	Code      string
	Address   *string
	Phone     *string
	CreatedAt time.Time
}

// Patient represents a maternal-health patient record
type Patient struct {
	ID            string
	UserID        string
	HospitalID    string
	RegisteredBy  string
	FullName      string
	PhoneNumber   string
	DateOfBirth   time.Time
	MaritalStatus string
	LMP           time.Time
	EDD           *time.Time
	Gravida       int
	Parity        int
	CreatedAt     time.Time
}

// HealthTip represents a pregnancy health tip, optionally pinned to a gestational week
type HealthTip struct {
	ID           string
	Title        string
	Content      string
	Tags         []string
	RelevantWeek *int
	CreatedBy    string
	CreatedAt    time.Time
}

// Reminder represents a scheduled patient notification
type Reminder struct {
	ID            string
	PatientID     string
	HospitalID    string
	Type          string
	Message       string
	ScheduledTime time.Time
	Sent          bool
	SentAt        *time.Time
	CreatedBy     string
	CreatedAt     time.Time
}

// DueReminder is a reminder joined with the patient contact details needed to deliver it
type DueReminder struct {
	Reminder
	PatientName  string
	PatientPhone string
}

// Appointment represents a scheduled clinic appointment
type Appointment struct {
	ID          string
	PatientID   string
	HospitalID  string
	Type        string
	Status      string
	ScheduledAt time.Time
	Notes       *string
	CreatedBy   string
	CreatedAt   time.Time
}

// Visit represents a completed clinic visit record
type Visit struct {
	ID         string
	PatientID  string
	HospitalID string
	Type       string
	Notes      *string
	VisitDate  time.Time
	RecordedBy string
	CreatedAt  time.Time
}

// LogEntry represents a persisted activity log record
type LogEntry struct {
	ID         string
	ActorID    string
	ActorRole  string
	Action     string
	Resource   string
	ResourceID *string
	CreatedAt  time.Time
}
