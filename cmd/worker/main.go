package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rimjeddah/consulate-api/config"
	"github.com/rimjeddah/consulate-api/internal/cache"
	"github.com/rimjeddah/consulate-api/internal/email"
	"github.com/rimjeddah/consulate-api/internal/kafka"
	"github.com/rimjeddah/consulate-api/internal/refid"
	"github.com/rimjeddah/consulate-api/internal/repository"
	"github.com/rimjeddah/consulate-api/internal/service/allocation"
	"github.com/rs/zerolog"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "consulate-worker").Logger()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	var repo repository.AppointmentRepository
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()
		repo = repository.NewPGAppointmentRepository(pool)
	case "redis":
		repo = repository.NewRedisAppointmentRepository(redisClient, cfg.Storage.AppointmentsKey, log)
	default:
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("worker needs a durable storage driver")
	}

	// The worker only reads occupancy, so no cache or producer wiring.
	allocationSvc := allocation.NewService(
		repo,
		refid.NewGenerator(),
		nil,
		nil,
		"",
		cfg.Booking.Slots,
		cfg.Booking.SlotCapacity,
		cfg.Catalog.ServiceIDs(),
		log,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender(log)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.AppointmentEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Warn().Err(err).Msg("decode notification event")
				return nil
			}
			return sender.Send(ctx, event)
		}); err != nil {
			log.Warn().Err(err).Msg("consumer stopped")
		}
	}()

	sweep := time.NewTicker(time.Duration(cfg.Worker.OccupancySweepMinutes) * time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-sweep.C:
			reportOccupancy(ctx, allocationSvc, cfg, log)
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		}
	}
}

// reportOccupancy logs slots already at capacity over the coming days
// so consulate staff can open extra counters before applicants run out
// of options.
func reportOccupancy(ctx context.Context, svc allocation.AllocationUseCase, cfg *config.Config, log zerolog.Logger) {
	start := time.Now().Format("2006-01-02")
	grid, err := svc.OccupancyGrid(ctx, start, cfg.Worker.OccupancyDays)
	if err != nil {
		log.Warn().Err(err).Msg("occupancy sweep failed")
		return
	}

	for _, day := range grid {
		for _, slot := range cfg.Booking.Slots {
			if day.Counts[slot] >= cfg.Booking.SlotCapacity {
				log.Info().Str("date", day.Date).Str("slot", slot).Msg("slot at capacity")
			}
		}
	}
}
