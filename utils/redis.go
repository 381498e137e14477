package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adityan21/campus-event-backend/config"
)

// ======================
// Redis Client (password reset tokens)
// ======================
var RedisClient *redis.Client

const resetTokenPrefix = "reset_token:"

// InitRedis connects the shared Redis client. A dead Redis only breaks
// the password-reset flow, so startup continues with a warning.
func InitRedis(cfg *config.Config) {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		fmt.Printf("⚠️ Redis not reachable at %s: %v\n", cfg.RedisAddr, err)
		return
	}
	fmt.Println("✅ Connected to Redis")
}

// SetResetToken stores token -> email with a TTL.
func SetResetToken(ctx context.Context, token, email string, ttl time.Duration) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not initialized")
	}
	return RedisClient.Set(ctx, resetTokenPrefix+token, email, ttl).Err()
}

// GetResetToken resolves a token back to the email it was issued for.
// Returns redis.Nil via the client error when the token is unknown or expired.
func GetResetToken(ctx context.Context, token string) (string, error) {
	if RedisClient == nil {
		return "", fmt.Errorf("redis not initialized")
	}
	return RedisClient.Get(ctx, resetTokenPrefix+token).Result()
}

// DeleteResetToken burns a token after a successful reset.
func DeleteResetToken(ctx context.Context, token string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not initialized")
	}
	return RedisClient.Del(ctx, resetTokenPrefix+token).Err()
}
