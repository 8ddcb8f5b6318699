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

	"github.com/velvetarcana/booking-api/internal/config"
	"github.com/velvetarcana/booking-api/internal/handler"
	availabilityHandler "github.com/velvetarcana/booking-api/internal/handler/availability"
	bookingHandler "github.com/velvetarcana/booking-api/internal/handler/booking"
	"github.com/velvetarcana/booking-api/internal/middleware"
	"github.com/velvetarcana/booking-api/internal/model"
	"github.com/velvetarcana/booking-api/internal/repository/postgres"
	"github.com/velvetarcana/booking-api/internal/router"
	bookingService "github.com/velvetarcana/booking-api/internal/service/booking"
	eventService "github.com/velvetarcana/booking-api/internal/service/event"
	scheduleService "github.com/velvetarcana/booking-api/internal/service/schedule"
	"github.com/velvetarcana/booking-api/pkg/auth"
	"github.com/velvetarcana/booking-api/pkg/clock"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	model.RegisterValidations()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	reservationRepo := postgres.NewReservationRepository(db)
	scheduleRepo := postgres.NewScheduleBlockRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	scheduleSvc := scheduleService.NewService(scheduleRepo)
	eventSvc := eventService.NewService(outboxRepo)
	bookingSvc := bookingService.NewService(reservationRepo, scheduleSvc, eventSvc, clock.New(), cfg.Booking.HoldTTL)

	// Middleware
	verifier := auth.NewVerifier(cfg.JWT.Secret)
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	// Handlers
	h := handler.NewHandler(db)
	availabilityH := availabilityHandler.NewHandler(scheduleSvc)
	bookingH := bookingHandler.NewHandler(bookingSvc)

	r := router.NewRouter(authMiddleware, availabilityH, bookingH, h, router.Config{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		CORSConfig:     middleware.DefaultCORSConfig(),
		MetricsPrefix:  "booking_api",
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
