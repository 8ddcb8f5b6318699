// The worker runs the two out-of-band loops: publishing staged booking
// events to the broker, and the optional storage-hygiene sweep that retires
// long-stale expired holds. Neither is needed for correctness; expiry is
// enforced lazily by every read.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/velvetarcana/booking-api/internal/config"
	"github.com/velvetarcana/booking-api/internal/repository"
	"github.com/velvetarcana/booking-api/internal/repository/postgres"
	"github.com/velvetarcana/booking-api/pkg/logger"
	"github.com/velvetarcana/booking-api/pkg/messaging/redis"
	"github.com/velvetarcana/booking-api/pkg/metrics"
	"github.com/velvetarcana/booking-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	zl := log.Logger
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)

	l := logger.NewLogger(nil)
	m := metrics.NewMetrics("booking", "worker")

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, l, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Start(ctx)
	go runHygieneSweep(ctx, reservationRepo, m, cfg.Worker.SweepInterval, l)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()
}

// runHygieneSweep periodically retires expired HELD rows. The occupancy
// predicate already ignores them, so this only trims stale storage.
func runHygieneSweep(ctx context.Context, repo repository.ReservationRepository, m *metrics.Metrics, interval time.Duration, l *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			released, err := repo.ReleaseExpired(ctx, time.Now())
			if err != nil {
				l.Error(err, "Failed to release expired holds")
				continue
			}
			if released > 0 {
				m.ExpiredHoldsReleased.Add(float64(released))
				l.Info("Released expired holds", "count", released)
			}
		}
	}
}
