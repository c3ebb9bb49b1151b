package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/handler"
	doctorHandler "github.com/jwalitptl/booking-api/internal/handler/doctor"
	hospitalHandler "github.com/jwalitptl/booking-api/internal/handler/hospital"
	patientHandler "github.com/jwalitptl/booking-api/internal/handler/patient"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/internal/router"
	appointmentService "github.com/jwalitptl/booking-api/internal/service/appointment"
	authService "github.com/jwalitptl/booking-api/internal/service/auth"
	catalogService "github.com/jwalitptl/booking-api/internal/service/catalog"
	eventService "github.com/jwalitptl/booking-api/internal/service/event"
	hospitalService "github.com/jwalitptl/booking-api/internal/service/hospital"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	hospitalRepo := postgres.NewHospitalRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	m := metrics.NewMetrics("booking")
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	hasher := security.NewBcryptHasher(0)

	eventSvc := eventService.NewService(outboxRepo, appLogger)
	catalogSvc := catalogService.NewService(hospitalRepo, doctorRepo)
	authSvc := authService.NewService(patientRepo, hospitalRepo, doctorRepo, catalogSvc, jwtSvc, hasher)
	hospitalSvc := hospitalService.NewService(hospitalRepo, doctorRepo, catalogSvc, hasher, eventSvc, appLogger)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, patientRepo, hospitalRepo, doctorRepo,
		catalogSvc, eventSvc, m, appLogger,
	)

	// Handlers
	if err := handler.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}
	healthH := handler.NewHealthHandler(db)
	patientH := patientHandler.NewHandler(authSvc, catalogSvc, appointmentSvc)
	hospitalH := hospitalHandler.NewHandler(authSvc, hospitalSvc, appointmentSvc)
	doctorH := doctorHandler.NewHandler(authSvc, appointmentSvc)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(authMiddleware, patientH, hospitalH, doctorH, healthH, router.RouterConfig{
		RateLimit:     rate.Limit(100),
		RateBurst:     200,
		Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "booking_http",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
