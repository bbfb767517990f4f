package service

import (
	"context"

	"go.uber.org/zap"

	"shiftdesk/backend/pkg/redis"
)

// Notification priorities.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notifier is the fire-and-forget seam to the notification gateway.
// Implementations must never let a delivery failure surface to the caller;
// workflow outcomes do not depend on notifications.
type Notifier interface {
	Notify(ctx context.Context, employeeID, title, message, priority string)
}

// ── Redis-backed notifier ──

type redisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier publishes notifications to the employee's Redis channel.
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) Notifier {
	return &redisNotifier{client: client, logger: logger}
}

func (n *redisNotifier) Notify(ctx context.Context, employeeID, title, message, priority string) {
	if err := n.client.PublishNotification(ctx, employeeID, title, message, priority); err != nil {
		n.logger.Warn("notification publish failed",
			zap.String("employee_id", employeeID),
			zap.String("title", title),
			zap.Error(err),
		)
	}
}

// ── Log-only notifier ──

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier logs notifications instead of delivering them. Used when
// Redis is unavailable and in tests.
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(_ context.Context, employeeID, title, message, priority string) {
	n.logger.Info("notification",
		zap.String("employee_id", employeeID),
		zap.String("title", title),
		zap.String("message", message),
		zap.String("priority", priority),
	)
}
