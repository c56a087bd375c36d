package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/flightclient"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewPGFlightRepository(pool)
	bookingRepo := repository.NewPGBookingRepository(pool)
	flightService := flights.NewFlightService(flightRepo, redisCache)

	// Remote inventory when a base URL is configured, otherwise the
	// in-process flight service; the breaker guards either path.
	var inventory flightclient.Client
	if cfg.FlightService.BaseURL != "" {
		inventory = flightclient.NewHTTPClient(cfg.FlightService.BaseURL, time.Duration(cfg.FlightService.TimeoutSeconds)*time.Second)
	} else {
		inventory = flightclient.NewLocalClient(flightService)
	}
	guarded := flightclient.NewBreakerClient(inventory, flightclient.BreakerSettings{
		FailureRatio: cfg.Breaker.FailureRatio,
		MinRequests:  cfg.Breaker.MinRequests,
		Window:       time.Duration(cfg.Breaker.WindowSeconds) * time.Second,
		Cooldown:     time.Duration(cfg.Breaker.CooldownSeconds) * time.Second,
	})

	bookingService := booking.NewBookingService(
		bookingRepo,
		guarded,
		producer,
		cfg.Kafka.BookingCreatedTopic,
		cfg.Kafka.BookingCancelledTopic,
		booking.WithCancellationWindow(time.Duration(cfg.Booking.CancellationWindowHours)*time.Hour),
	)

	if err := bootstrap.Run(ctx, cfg, flightService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
