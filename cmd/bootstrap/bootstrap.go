package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medical-appointment-service/config"
	"medical-appointment-service/internal/client"
	deliveryHttp "medical-appointment-service/internal/delivery/http"
	"medical-appointment-service/internal/delivery/http/handler"
	"medical-appointment-service/internal/delivery/http/middleware"
	"medical-appointment-service/internal/infrastructure/cache"
	"medical-appointment-service/internal/infrastructure/database"
	"medical-appointment-service/internal/infrastructure/lock"
	"medical-appointment-service/internal/repository"
	"medical-appointment-service/internal/scheduling"
	"medical-appointment-service/internal/service"
	"medical-appointment-service/internal/usecase"
	"medical-appointment-service/pkg/jwt"
	"medical-appointment-service/pkg/validator"

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

	reminderScheduler *service.ReminderScheduler
	dispatcher        *service.Dispatcher
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
	logrus.Info("Database connected successfully")

	if err := database.RunMigrations(db, cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	app.initialize(cfg, db, redisClient)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initialize wires all layers and builds the HTTP server
func (app *App) initialize(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) {
	log := logrus.StandardLogger()
	clock := scheduling.SystemClock()

	// Initialize JWT service and validator
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Initialize repositories. Appointment reads by id go through the Redis
	// cache decorator; writes invalidate it.
	appointmentRepo := repository.NewCachedAppointmentRepository(
		repository.NewAppointmentRepository(db),
		redisClient,
		cfg.Scheduling.CacheTTL,
		log,
	)
	historyRepo := repository.NewAppointmentHistoryRepository(db)
	transactor := repository.NewTransactor(db)

	// Initialize external clients and infrastructure
	userDirectory := client.NewHTTPUserDirectory(cfg.UserService.BaseURL, cfg.UserService.Timeout)
	doctorLocker := lock.NewRedisDoctorLocker(redisClient, cfg.Scheduling.DoctorLockTTL)

	// Initialize notification pipeline
	notifier := service.NewRedisNotifier(redisClient, cfg.Notification.Channel)
	app.dispatcher = service.NewDispatcher(notifier, userDirectory, cfg.Notification.QueueSize, log)

	// Initialize reminder scheduler
	app.reminderScheduler = service.NewReminderScheduler(
		appointmentRepo,
		historyRepo,
		transactor,
		notifier,
		clock,
		cfg.Reminder.Window,
		cfg.Reminder.Interval,
		log,
	)

	// Initialize usecase
	appointmentUsecase := usecase.NewAppointmentUsecase(
		log,
		clock,
		cfg.Scheduling,
		appointmentRepo,
		historyRepo,
		transactor,
		doctorLocker,
		userDirectory,
		app.dispatcher,
	)

	// Initialize handler and middleware
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(appointmentHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	app.Server = &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.App.Port),
		Handler: httpRouter,
	}
}

// Run starts the HTTP server and background services and handles graceful
// shutdown
func (app *App) Run() {
	app.reminderScheduler.Start()

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

	// Stop background services before closing connections they depend on
	app.reminderScheduler.Stop()
	app.dispatcher.Stop()

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
