package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/auctionhouse/backend/internal/domain/notification"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// envelope is the wire format published to subscribers
type envelope struct {
	Event     string `json:"event"`
	Payload   any    `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// RedisPublisher pushes real-time notification events over Redis Pub/Sub.
// Delivery is best effort: the durable notification row is the source of
// truth and a missed publish only delays the recipient seeing it.
type RedisPublisher struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisPublisherConfig holds Redis connection configuration
type RedisPublisherConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisPublisher creates a publisher with its own Redis connection
func NewRedisPublisher(cfg RedisPublisherConfig, logger *zap.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisPublisher{
		client:     client,
		ownsClient: true,
		logger:     logger,
	}, nil
}

// NewRedisPublisherWithClient creates a publisher on an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisPublisherWithClient(client *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:     client,
		ownsClient: false,
		logger:     logger,
	}
}

// Publish sends an event to a channel as a JSON envelope
func (p *RedisPublisher) Publish(ctx context.Context, channel, eventName string, payload any) error {
	data, err := json.Marshal(envelope{
		Event:     eventName,
		Payload:   payload,
		Timestamp: time.Now().UnixNano(),
	})
	if err != nil {
		p.logger.Error("Failed to marshal notification event",
			zap.String("channel", channel),
			zap.String("event", eventName),
			zap.Error(err))
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		p.logger.Error("Failed to publish notification event",
			zap.String("channel", channel),
			zap.String("event", eventName),
			zap.Error(err))
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	p.logger.Debug("Published notification event",
		zap.String("channel", channel),
		zap.String("event", eventName))

	return nil
}

// Close releases the Redis client if this publisher owns it
func (p *RedisPublisher) Close() error {
	if p.ownsClient {
		return p.client.Close()
	}
	return nil
}

// Ensure RedisPublisher implements notification.Publisher
var _ notification.Publisher = (*RedisPublisher)(nil)
