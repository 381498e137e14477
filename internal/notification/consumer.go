package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adityan21/campus-event-backend/config"
	"github.com/adityan21/campus-event-backend/utils"
)

// StartKafkaConsumer runs the registration fanout worker: it reads
// admission messages published by the registration service and delivers
// the email + in-app notification for each. Runs until ctx is cancelled.
func StartKafkaConsumer(ctx context.Context, cfg *config.Config, svc Service) {
	reader := utils.NewKafkaReader(cfg)
	defer reader.Close()

	fmt.Println("🚀 Kafka notification consumer started")

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Println("🛑 Kafka consumer stopped")
				return
			}
			fmt.Printf("⚠️ Kafka read error: %v\n", err)
			continue
		}

		var msg utils.RegistrationMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			fmt.Printf("⚠️ Skipping malformed registration message: %v\n", err)
			continue
		}

		if err := svc.DeliverRegistrationNotice(ctx, msg); err != nil {
			fmt.Printf("⚠️ Failed to deliver registration notice for user %d: %v\n", msg.UserID, err)
		}
	}
}
