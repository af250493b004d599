package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/themobileprof/mhaas-be/internal/api"
	"github.com/themobileprof/mhaas-be/internal/api/middleware"
	"github.com/themobileprof/mhaas-be/internal/audit"
	"github.com/themobileprof/mhaas-be/internal/db"
	"github.com/themobileprof/mhaas-be/internal/notify"
	"github.com/themobileprof/mhaas-be/internal/scheduler"
	"github.com/themobileprof/mhaas-be/internal/tips"
	"github.com/themobileprof/mhaas-be/internal/ws"
	"github.com/themobileprof/mhaas-be/pkg/africastalking"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Get configuration from environment
	port := getEnv("PORT", "8080")
	databaseURL := getEnv("DATABASE_URL", "")
	jwtSecret := getEnv("JWT_SECRET", "")
	corsOrigins := getEnv("CORS_ORIGINS", "")

	atAPIKey := getEnv("AFRICAS_TALKING_API_KEY", "")
	atUsername := getEnv("AFRICAS_TALKING_USERNAME", "")
	atSenderID := getEnv("AFRICAS_TALKING_SENDER_ID", "MHAAS")

	smtpHost := getEnv("SMTP_HOST", "")
	smtpPort := getEnv("SMTP_PORT", "587")
	smtpFrom := getEnv("EMAIL_USER", "")
	smtpPass := getEnv("EMAIL_PASS", "")

	reminderInterval := getEnvDuration("REMINDER_INTERVAL", scheduler.DefaultReminderInterval)
	tipHour := getEnvInt("TIP_GENERATION_HOUR", scheduler.DefaultTipHour)

	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize database: a connection URL wins, discrete DB_* vars are the fallback
	var database *db.DB
	var err error
	if databaseURL != "" {
		database, err = db.NewFromURL(databaseURL)
	} else {
		database, err = db.New(db.Config{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "mhaas"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConnections:  25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		})
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	log.Println("✅ Database connected")

	// Live activity feed for admin dashboards
	eventHub := ws.NewEventHub(jwtSecret)

	// Activity logging (fire-and-forget, streamed to the hub)
	auditLogger := audit.NewLogger(database, eventHub)

	// Notification providers (optional - only if credentials provided)
	var smsSender notify.SMSSender
	if atAPIKey != "" && atUsername != "" {
		smsSender = africastalking.NewClient(africastalking.Config{
			APIKey:   atAPIKey,
			Username: atUsername,
			SenderID: atSenderID,
		})
		log.Println("✅ SMS provider initialized")
	}

	var emailSender notify.EmailSender
	if smtpHost != "" && smtpFrom != "" {
		emailSender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     smtpHost,
			Port:     smtpPort,
			From:     smtpFrom,
			Password: smtpPass,
		})
		log.Println("✅ Email provider initialized")
	}

	gateway := notify.NewGateway(emailSender, smsSender)

	// Background schedulers
	reminderSched := scheduler.NewReminderScheduler(database, gateway, auditLogger, reminderInterval)
	reminderSched.Start()
	defer reminderSched.Stop()

	tipGenerator := tips.NewGenerator(database, auditLogger)
	tipSched := scheduler.NewTipScheduler(tipGenerator, auditLogger, tipHour)
	tipSched.Start()
	defer tipSched.Stop()

	// Initialize handlers
	tipService := tips.NewService(database)
	authHandler := api.NewAuthHandler(database, auditLogger, jwtSecret)
	hospitalHandler := api.NewHospitalHandler(database, auditLogger)
	staffHandler := api.NewStaffHandler(database, auditLogger)
	patientHandler := api.NewPatientHandler(database, auditLogger)
	reminderHandler := api.NewReminderHandler(database, auditLogger)
	tipHandler := api.NewHealthTipHandler(database, tipService, auditLogger)
	appointmentHandler := api.NewAppointmentHandler(database, auditLogger)
	visitHandler := api.NewVisitHandler(database, auditLogger)
	dashboardHandler := api.NewDashboardHandler(database)

	// Setup Gin router
	router := gin.Default()

	var origins []string
	if corsOrigins != "" {
		origins = strings.Split(corsOrigins, ",")
	}
	router.Use(middleware.CORS(origins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())

	// Apply global rate limiting (100 req/min per IP, burst of 200)
	router.Use(middleware.PerIP(100.0/60.0, 200))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	authMW := middleware.JWTAuth(jwtSecret)
	staffUp := middleware.RequireRoles(db.RoleSuperAdmin, db.RoleHospitalAdmin, db.RoleStaff)
	adminUp := middleware.RequireRoles(db.RoleSuperAdmin, db.RoleHospitalAdmin)

	// Auth routes (public)
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMW, authHandler.Me)
	}

	// Hospital routes (super admin)
	hospitals := router.Group("/api/hospitals")
	hospitals.Use(authMW)
	{
		hospitals.GET("", hospitalHandler.ListHospitals)
		hospitals.GET("/:id", hospitalHandler.GetHospital)
		hospitals.POST("", middleware.RequireRoles(db.RoleSuperAdmin), hospitalHandler.CreateHospital)
		hospitals.PUT("/:id", middleware.RequireRoles(db.RoleSuperAdmin), hospitalHandler.UpdateHospital)
		hospitals.DELETE("/:id", middleware.RequireRoles(db.RoleSuperAdmin), hospitalHandler.DeleteHospital)
	}

	// Staff routes (admins)
	staff := router.Group("/api/staff")
	staff.Use(authMW, adminUp)
	{
		staff.GET("", staffHandler.ListStaff)
		staff.POST("", staffHandler.CreateStaff)
		staff.DELETE("/:id", staffHandler.DeleteStaff)
	}

	// Patient routes (staff and up; patients can read their own record)
	patients := router.Group("/api/patients")
	patients.Use(authMW, middleware.PerUser(500.0/3600.0, 100))
	{
		patients.POST("", staffUp, patientHandler.RegisterPatient)
		patients.GET("", staffUp, patientHandler.ListPatients)
		patients.GET("/:id", patientHandler.GetPatient)
		patients.PUT("/:id/lmp", staffUp, patientHandler.UpdateLMP)
		patients.DELETE("/:id", adminUp, patientHandler.DeletePatient)
	}

	// Reminder routes
	reminders := router.Group("/api/reminders")
	reminders.Use(authMW)
	{
		reminders.GET("", reminderHandler.ListReminders)
		reminders.POST("", staffUp, reminderHandler.CreateReminder)
		reminders.PUT("/:id", staffUp, reminderHandler.UpdateReminder)
		reminders.DELETE("/:id", staffUp, reminderHandler.DeleteReminder)
	}

	// Health tip routes
	healthTips := router.Group("/api/health-tips")
	healthTips.Use(authMW)
	{
		healthTips.GET("", tipHandler.ListRecentTips)
		healthTips.GET("/personalized", tipHandler.GetPersonalizedTips)
		healthTips.GET("/week/:week", tipHandler.GetTipsByWeek)
		healthTips.GET("/:id", tipHandler.GetHealthTip)
		healthTips.POST("", staffUp, tipHandler.CreateHealthTip)
		healthTips.PUT("/:id", staffUp, tipHandler.UpdateHealthTip)
		healthTips.DELETE("/:id", staffUp, tipHandler.DeleteHealthTip)
	}

	// Appointment routes
	appointments := router.Group("/api/appointments")
	appointments.Use(authMW)
	{
		appointments.GET("", appointmentHandler.ListAppointments)
		appointments.POST("", staffUp, appointmentHandler.CreateAppointment)
		appointments.PUT("/:id", staffUp, appointmentHandler.UpdateAppointment)
		appointments.DELETE("/:id", staffUp, appointmentHandler.DeleteAppointment)
	}

	// Visit routes (staff and up)
	visits := router.Group("/api/visits")
	visits.Use(authMW, staffUp)
	{
		visits.POST("", visitHandler.CreateVisit)
		visits.GET("/:id", visitHandler.GetVisit)
		visits.GET("/patient/:patientId", visitHandler.ListVisits)
		visits.DELETE("/:id", visitHandler.DeleteVisit)
	}

	// Dashboard and logs
	dashboard := router.Group("/api/dashboard")
	dashboard.Use(authMW)
	{
		dashboard.GET("/stats", dashboardHandler.GetStats)
		dashboard.GET("/logs", adminUp, dashboardHandler.ListLogs)
	}

	// WebSocket activity feed (admins, token via query param)
	router.GET("/ws/events", eventHub.HandleEvents)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
