package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shiftdesk/backend/config"
)

// Client wraps the Redis connection used for notification fan-out.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects to Redis and pings it once.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// notification is the wire shape published to subscribers.
type notification struct {
	EmployeeID string `json:"employee_id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Priority   string `json:"priority"`
	SentAt     string `json:"sent_at"`
}

const notifyChannelPrefix = "notify:"

// PublishNotification pushes one notification onto the employee's channel.
// Delivery beyond the broker is the notification gateway's concern.
func (c *Client) PublishNotification(ctx context.Context, employeeID, title, message, priority string) error {
	payload, err := json.Marshal(notification{
		EmployeeID: employeeID,
		Title:      title,
		Message:    message,
		Priority:   priority,
		SentAt:     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return c.rdb.Publish(ctx, notifyChannelPrefix+employeeID, payload).Err()
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
