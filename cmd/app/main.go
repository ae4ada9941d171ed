package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rimjeddah/consulate-api/config"
	"github.com/rimjeddah/consulate-api/internal/auth"
	"github.com/rimjeddah/consulate-api/internal/bootstrap"
	"github.com/rimjeddah/consulate-api/internal/cache"
	"github.com/rimjeddah/consulate-api/internal/kafka"
	"github.com/rimjeddah/consulate-api/internal/refid"
	"github.com/rimjeddah/consulate-api/internal/repository"
	"github.com/rimjeddah/consulate-api/internal/service/allocation"
	"github.com/rimjeddah/consulate-api/internal/service/tracking"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "consulate-api").Logger()

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
	redisCache := cache.NewRedisCache(redisClient, time.Duration(cfg.Booking.AvailabilityCacheSeconds)*time.Second)

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
	case "memory":
		repo = repository.NewMemoryAppointmentRepository()
	default:
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("unknown storage driver")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		log.Warn().Err(err).Msg("kafka unreachable, events will be dropped")
	}

	allocationSvc := allocation.NewService(
		repo,
		refid.NewGenerator(),
		redisCache,
		producer,
		cfg.Kafka.AppointmentsTopic,
		cfg.Booking.Slots,
		cfg.Booking.SlotCapacity,
		cfg.Catalog.ServiceIDs(),
		log,
		allocation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	trackingSvc := tracking.NewService(
		repo,
		producer,
		cfg.Kafka.AppointmentsTopic,
		log,
		tracking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	manager := auth.Manager{
		Secret: []byte(cfg.Admin.JWTSecret),
		TTL:    time.Duration(cfg.Admin.SessionTTLMinutes) * time.Minute,
		Issuer: "consulate-api",
	}

	log.Info().Str("addr", cfg.HTTP.Address).Str("storage", cfg.Storage.Driver).Msg("starting server")
	if err := bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Allocation: allocationSvc,
		Tracking:   trackingSvc,
		Broadcast:  redisCache,
		Auth:       manager,
		Log:        log,
	}); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
