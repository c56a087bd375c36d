package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The worker is the notification consumer: it reads booking lifecycle
// events and hands them to the mail sender. Events may be redelivered, so
// sending twice for one booking id must stay harmless.
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

	sender := email.NewSender()

	createdConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingCreatedTopic)
	defer createdConsumer.Close()
	cancelledConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingCancelledTopic)
	defer cancelledConsumer.Close()

	go consume(ctx, createdConsumer, "created", sender.SendBookingCreated)
	go consume(ctx, cancelledConsumer, "cancelled", sender.SendBookingCancelled)

	<-ctx.Done()
	log.Println("shutting down")
}

func consume(ctx context.Context, consumer *kafka.Consumer, kind string, send func(context.Context, kafka.BookingEvent) error) {
	err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("decode %s event: %v", kind, err)
			return nil
		}
		return send(ctx, event)
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("%s consumer stopped: %v", kind, err)
	}
}
