// Package main initializes and starts the senior-services API server,
// setting up configuration, logging, the database connection,
// repositories, services and handlers.
package main

import (
	"cmp"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/dpm-muni/dpm-backend/internal/auth"
	"github.com/dpm-muni/dpm-backend/internal/config"
	"github.com/dpm-muni/dpm-backend/internal/db"
	"github.com/dpm-muni/dpm-backend/internal/logger"
	"github.com/dpm-muni/dpm-backend/internal/repository"
	"github.com/dpm-muni/dpm-backend/internal/server/handler/http"
	"github.com/dpm-muni/dpm-backend/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port
	dbName := options.DatabaseDSN

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("jwt secret is required")
	}

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(dbName)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Initialize repositories.
	accountRepo := repository.NewAccountRepository(postgresDB)
	caregiverRepo := repository.NewCaregiverRepository(postgresDB)
	elderRepo := repository.NewElderRepository(postgresDB)
	centerRepo := repository.NewCenterRepository(postgresDB)
	activityRepo := repository.NewActivityRepository(postgresDB)
	workshopRepo := repository.NewWorkshopRepository(postgresDB)
	serviceRepo := repository.NewServiceRepository(postgresDB)
	supportWorkerRepo := repository.NewSupportWorkerRepository(postgresDB)
	maintenanceRepo := repository.NewMaintenanceRepository(postgresDB)
	participationRepo := repository.NewParticipationRepository(postgresDB)
	assignmentRepo := repository.NewAssignmentRepository(postgresDB)

	// Initialize the session token and password primitives.
	ttl := time.Duration(options.TokenTTLSeconds) * time.Second
	if ttl == 0 {
		ttl = auth.DefaultTokenTTL
	}
	tokens := auth.NewTokenManager(options.JWTSecret, ttl)
	hasher := auth.NewBcryptHasher(options.BcryptCost)

	// Initialize business-logic services.
	authService := service.NewAuthService(accountRepo, hasher, tokens)
	accountService := service.NewAccountService(accountRepo, hasher)
	caregiverService := service.NewCaregiverService(caregiverRepo)
	elderService := service.NewElderService(elderRepo)
	centerService := service.NewCenterService(centerRepo)
	activityService := service.NewActivityService(activityRepo, caregiverRepo)
	workshopService := service.NewWorkshopService(workshopRepo, caregiverRepo)
	serviceService := service.NewServiceRecordService(serviceRepo, caregiverRepo)
	supportWorkerService := service.NewSupportWorkerService(supportWorkerRepo, centerRepo)
	maintenanceService := service.NewMaintenanceService(maintenanceRepo, centerRepo)
	programs := service.ProgramResolver{
		Activities: activityRepo,
		Workshops:  workshopRepo,
		Services:   serviceRepo,
	}
	participationService := service.NewParticipationService(participationRepo, elderRepo, programs)
	assignmentService := service.NewAssignmentService(assignmentRepo, caregiverRepo, programs)

	// Create HTTP handlers.
	handlers := http.Handlers{
		Auth:           &http.AuthHandler{AuthService: authService},
		Accounts:       &http.AccountsHandler{Service: accountService},
		Caregivers:     http.NewCaregiverResource(caregiverService),
		Elders:         http.NewElderResource(elderService),
		Centers:        http.NewCenterResource(centerService),
		CenterExtras:   &http.CentersHandler{Service: centerService},
		Activities:     http.NewActivityResource(activityService),
		Workshops:      http.NewWorkshopResource(workshopService),
		Services:       http.NewServiceRecordResource(serviceService),
		SupportWorkers: http.NewSupportWorkerResource(supportWorkerService),
		Maintenances:   http.NewMaintenanceResource(maintenanceService),
		MaintExtras:    &http.MaintenanceHandler{Service: maintenanceService},
		Participations: &http.ParticipationsHandler{Service: participationService},
		Assignments:    &http.AssignmentsHandler{Service: assignmentService},
		Health:         &http.HealthHandler{DB: postgresDB},
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(handlers, authService, zapLogger)

	// Create and start the HTTP server.
	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
