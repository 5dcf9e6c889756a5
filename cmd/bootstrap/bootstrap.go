package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medassist/config"
	deliveryHttp "medassist/internal/delivery/http"
	"medassist/internal/delivery/http/handler"
	"medassist/internal/delivery/http/middleware"
	"medassist/internal/infrastructure/cache"
	"medassist/internal/infrastructure/database"
	"medassist/internal/infrastructure/notification"
	"medassist/internal/repository"
	"medassist/internal/service"
	"medassist/internal/usecase"
	"medassist/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	emergencyUsecase usecase.EmergencyUsecase
	ledgerStop       func()
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Redis backs the slot ledger only when configured as the driver
	if cfg.Booking.LedgerDriver == "redis" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
	}

	// Initialize all layers
	if err := app.initializeServer(); err != nil {
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() error {
	cfg := app.Config
	db := app.DB

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository()
	scheduleRepo := repository.NewDoctorScheduleRepository()
	caseRepo := repository.NewEmergencyCaseRepository()
	auditRepo := repository.NewAuditLogRepository()
	alertRepo := repository.NewDashboardAlertRepository()

	// Initialize logger
	log := logrus.StandardLogger()

	// Load the symptom lexicon
	lexicon, err := service.LoadLexicon(cfg.Triage.LexiconPath)
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}

	// Initialize the slot ledger
	var ledger service.SlotLedger
	if cfg.Booking.LedgerDriver == "redis" {
		ledger = service.NewRedisSlotLedger(app.RedisClient, log)
	} else {
		memLedger := service.NewMemorySlotLedger(log)
		ledger = memLedger
		app.ledgerStop = memLedger.Stop
	}

	// Initialize notification channels
	httpClient := &http.Client{Timeout: cfg.Emergency.NotifyTimeout}
	provider := notification.NewProviderChannel(cfg.Emergency.ProviderURL, httpClient, log)
	channels := map[service.Channel]service.Gateway{}
	for _, name := range cfg.Emergency.Channels {
		switch service.Channel(name) {
		case service.ChannelDashboard:
			channels[service.ChannelDashboard] = notification.NewDashboardChannel(db, log, alertRepo)
		case service.ChannelSMS, service.ChannelWhatsApp, service.ChannelEmail:
			channels[service.Channel(name)] = provider
		default:
			log.Warnf("Unknown notification channel %q, skipping", name)
		}
	}
	gateway := notification.NewGateway(log, channels)

	// Initialize services
	audit := service.NewAuditService(db, log, auditRepo)

	// Initialize usecases
	triageUsecase := usecase.NewTriageUsecase(log, lexicon, cfg.Triage)
	emergencyUsecase := usecase.NewEmergencyUsecase(db, log, caseRepo, gateway, audit, cfg.Emergency)
	bookingUsecase := usecase.NewBookingUsecase(db, log, appointmentRepo, scheduleRepo, ledger, audit, cfg.Booking)
	scheduleUsecase := usecase.NewDoctorScheduleUsecase(db, log, scheduleRepo, audit)
	dashboardUsecase := usecase.NewDashboardUsecase(db, log, alertRepo, auditRepo)
	app.emergencyUsecase = emergencyUsecase

	// Initialize handlers
	triageHandler := handler.NewTriageHandler(triageUsecase, customValidator)
	emergencyHandler := handler.NewEmergencyHandler(triageUsecase, emergencyUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(bookingUsecase, customValidator)
	doctorScheduleHandler := handler.NewDoctorScheduleHandler(scheduleUsecase, customValidator)
	dashboardHandler := handler.NewDashboardHandler(dashboardUsecase)

	// Initialize middleware
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(triageHandler, emergencyHandler, appointmentHandler, doctorScheduleHandler, dashboardHandler, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	app.Server = &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.App.Port),
		Handler: httpRouter,
	}
	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Drain in-flight notification sends before closing connections
	if app.emergencyUsecase != nil {
		app.emergencyUsecase.Stop()
	}
	if app.ledgerStop != nil {
		app.ledgerStop()
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
