package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/adityan21/campus-event-backend/config"
)

// ======================
// Kafka (registration event fanout)
// ======================
var kafkaWriter *kafka.Writer

const defaultTopic = "registration-events"

// RegistrationMessage is the payload published after a successful admission
// and consumed by the notification worker for email delivery.
type RegistrationMessage struct {
	RegistrationID uint   `json:"registration_id"`
	UserID         uint   `json:"user_id"`
	UserName       string `json:"user_name"`
	UserEmail      string `json:"user_email"`
	EventID        uint   `json:"event_id"`
	EventTitle     string `json:"event_title"`
	Status         string `json:"status"`
	QRCode         string `json:"qr_code"`
}

// InitKafka sets up the shared writer. Kafka is optional infrastructure:
// without brokers the app still runs, emails are just sent inline.
func InitKafka(cfg *config.Config) {
	if cfg.KafkaBrokers == "" {
		fmt.Println("⚠️ KAFKA_BROKERS not set, registration fanout disabled")
		return
	}

	topic := cfg.KafkaTopic
	if topic == "" {
		topic = defaultTopic
	}

	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	fmt.Println("✅ Kafka writer initialized, topic:", topic)
}

// KafkaEnabled reports whether fanout was configured at startup.
func KafkaEnabled() bool {
	return kafkaWriter != nil
}

// PublishRegistration writes one registration message, keyed by event so
// messages for the same event stay ordered.
func PublishRegistration(ctx context.Context, msg RegistrationMessage) error {
	if kafkaWriter == nil {
		return fmt.Errorf("kafka not initialized")
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal registration message: %w", err)
	}

	return kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("event-%d", msg.EventID)),
		Value: value,
	})
}

// NewKafkaReader builds the consumer used by the notification worker.
func NewKafkaReader(cfg *config.Config) *kafka.Reader {
	topic := cfg.KafkaTopic
	if topic == "" {
		topic = defaultTopic
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		Topic:    topic,
		GroupID:  "campus-event-notifications",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// CloseKafka flushes and closes the writer on shutdown.
func CloseKafka() {
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			fmt.Printf("⚠️ Error closing Kafka writer: %v\n", err)
		}
	}
}
