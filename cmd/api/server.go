package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/email"
	"github.com/jwalitptl/booking-api/internal/handler/admin"
	"github.com/jwalitptl/booking-api/internal/handler/doctor"
	"github.com/jwalitptl/booking-api/internal/handler/health"
	"github.com/jwalitptl/booking-api/internal/handler/prometheus"
	"github.com/jwalitptl/booking-api/internal/handler/user"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/repository/mongodb"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/internal/router"
	accountService "github.com/jwalitptl/booking-api/internal/service/account"
	appointmentService "github.com/jwalitptl/booking-api/internal/service/appointment"
	assistantService "github.com/jwalitptl/booking-api/internal/service/assistant"
	authService "github.com/jwalitptl/booking-api/internal/service/auth"
	doctorService "github.com/jwalitptl/booking-api/internal/service/doctor"
	medicalService "github.com/jwalitptl/booking-api/internal/service/medical"
	notificationService "github.com/jwalitptl/booking-api/internal/service/notification"
	"github.com/jwalitptl/booking-api/internal/storage"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/messaging/redis"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/security"
)

func runServer(cfg *config.Config) error {
	gin.SetMode(cfg.Server.Mode)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Initialize databases
	db, err := postgres.NewDB(startCtx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	mongoClient, err := mongodb.NewClient(startCtx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	mongoDB := mongoClient.Database(cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(startCtx, mongoDB); err != nil {
		return err
	}

	checks := map[string]health.Check{
		"postgres": db.PingContext,
		"mongo":    func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	// Notification fan-out is optional; without redis events are dropped.
	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Redis.URL != "" {
		broker, err := redis.NewRedisBroker(startCtx, redis.Config{URL: cfg.Redis.URL, PoolSize: cfg.Redis.PoolSize})
		if err != nil {
			return err
		}
		defer broker.Close()
		publisher = broker
		checks["redis"] = broker.Ping
	}

	reg := promclient.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg, cfg.Metrics.Namespace)

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	recordRepo := mongodb.NewMedicalRecordRepository(mongoDB)

	store, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.MaxFileSize)
	if err != nil {
		return err
	}

	// Initialize services
	tokens := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	notifier := notificationService.NewService(accountRepo, email.NewSender(cfg.SMTP), publisher, m)

	authSvc := authService.NewService(accountRepo, tokens, hasher)
	accountSvc := accountService.NewService(accountRepo, hasher)
	doctorSvc := doctorService.NewService(doctorRepo, accountRepo, notifier, m)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, accountRepo, notifier, m)
	medicalSvc := medicalService.NewService(recordRepo, appointmentRepo, store, notifier, m, cfg.Upload.MaxFiles)
	assistantSvc := assistantService.NewService(
		assistantService.NewProviderClient(cfg.Assistant),
		assistantService.NewLimiter(cfg.Assistant.RequestsPerMinute, cfg.Assistant.TokensPerMinute, nil),
		m,
		cfg.Assistant.MaxReplyTokens,
	)

	// Setup router
	r, err := router.NewRouter(cfg, middleware.NewAuthMiddleware(tokens, doctorRepo), router.Handlers{
		User: user.NewHandler(user.Services{
			Auth:         authSvc,
			Accounts:     accountSvc,
			Doctors:      doctorSvc,
			Appointments: appointmentSvc,
			Medical:      medicalSvc,
			Assistant:    assistantSvc,
		}),
		Doctor:  doctor.NewHandler(doctorSvc, appointmentSvc, medicalSvc),
		Admin:   admin.NewHandler(accountSvc, doctorSvc),
		Health:  health.NewHandler(checks),
		Metrics: prometheus.New(reg, cfg.Metrics.Namespace),
	})
	if err != nil {
		return err
	}
	r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	log.Info().Msg("shutting down server...")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
