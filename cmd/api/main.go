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

	"github.com/glowdesk/salon-api/config"
	"github.com/glowdesk/salon-api/internal/email"
	availabilityHandler "github.com/glowdesk/salon-api/internal/handler/availability"
	bookingHandler "github.com/glowdesk/salon-api/internal/handler/booking"
	healthHandler "github.com/glowdesk/salon-api/internal/handler/health"
	"github.com/glowdesk/salon-api/internal/middleware"
	"github.com/glowdesk/salon-api/internal/repository/postgres"
	"github.com/glowdesk/salon-api/internal/router"
	availabilityService "github.com/glowdesk/salon-api/internal/service/availability"
	bookingService "github.com/glowdesk/salon-api/internal/service/booking"
	notificationService "github.com/glowdesk/salon-api/internal/service/notification"
	"github.com/glowdesk/salon-api/internal/timeslot"
	"github.com/glowdesk/salon-api/pkg/logger"
	"github.com/glowdesk/salon-api/pkg/messaging"
	"github.com/glowdesk/salon-api/pkg/messaging/redis"
	"github.com/glowdesk/salon-api/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("salon_api", "scheduling")

	// Initialize repositories
	salonRepo := postgres.NewSalonRepository(db, m)
	providerRepo := postgres.NewProviderRepository(db, m)
	templateRepo := postgres.NewTemplateRepository(db, m)
	leaveRepo := postgres.NewLeaveRepository(db, m)
	bookingRepo := postgres.NewBookingRepository(db, m)

	windowStart, err := timeslot.ParseClock(cfg.Scheduling.WindowStart)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scheduling window start")
	}
	windowEnd, err := timeslot.ParseClock(cfg.Scheduling.WindowEnd)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scheduling window end")
	}

	// Initialize the availability resolver
	availabilitySvc := availabilityService.NewService(
		salonRepo,
		providerRepo,
		templateRepo,
		leaveRepo,
		bookingRepo,
		availabilityService.Config{
			SlotDurationMin: cfg.Scheduling.SlotDurationMin,
			WindowStartMin:  windowStart,
			WindowEndMin:    windowEnd,
			CacheTTL:        cfg.Scheduling.CacheTTL,
		},
		availabilityService.WithMetrics(m),
	)

	// Initialize Redis message broker when configured
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	// Initialize customer notifications
	var emailSvc email.Service = email.NoopService{}
	if cfg.SMTP.Enabled {
		emailSvc = email.NewSMTPService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	notifier := notificationService.NewService(emailSvc, providerRepo)

	// Initialize the booking admission controller
	bookingOpts := []bookingService.Option{
		bookingService.WithNotifier(notifier),
		bookingService.WithMetrics(m),
	}
	if broker != nil {
		bookingOpts = append(bookingOpts, bookingService.WithBroker(broker))
	}
	bookingSvc := bookingService.NewService(
		bookingRepo,
		providerRepo,
		availabilitySvc,
		bookingOpts...,
	)

	// Initialize handlers
	availabilityH := availabilityHandler.NewHandler(availabilitySvc)
	bookingH := bookingHandler.NewHandler(bookingSvc)
	var brokerPinger healthHandler.Pinger
	if p, ok := broker.(healthHandler.Pinger); ok {
		brokerPinger = p
	}
	healthH := healthHandler.NewHandler(db, brokerPinger)

	// Setup router
	routerCfg := router.Config{
		CORSConfig: middleware.DefaultCORSConfig(),
		Timeout:    cfg.Server.RequestTimeout,
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerCfg.RateBurst = cfg.RateLimit.Burst
	}
	r := router.NewRouter(availabilityH, bookingH, healthH, routerCfg)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
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
