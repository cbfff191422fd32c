package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"climate-sentinel/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// StreamNotifier appends alert events to a Redis stream
type StreamNotifier struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

// NewStreamNotifier creates a stream notifier; maxLen <= 0 keeps the stream unbounded
func NewStreamNotifier(client *redis.Client, stream string, maxLen int64, logger *zap.Logger) *StreamNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamNotifier{client: client, stream: stream, maxLen: maxLen, logger: logger}
}

func (n *StreamNotifier) AlertRaised(ctx context.Context, alert models.Alert) error {
	return n.publish(ctx, NewAlertEvent(EventRaised, alert))
}

func (n *StreamNotifier) AlertCleared(ctx context.Context, alert models.Alert) error {
	return n.publish(ctx, NewAlertEvent(EventCleared, alert))
}

func (n *StreamNotifier) publish(ctx context.Context, event AlertEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"type":      string(event.Type),
			"alert_id":  event.Alert.ID,
			"zone_id":   event.Alert.ZoneID,
			"severity":  string(event.Alert.Severity),
			"is_active": strconv.FormatBool(event.Alert.IsActive),
			"data":      string(data),
			"timestamp": strconv.FormatInt(event.EmittedAt.Unix(), 10),
		},
	}
	if n.maxLen > 0 {
		args.MaxLen = n.maxLen
		args.Approx = true
	}

	id, err := n.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", n.stream, err)
	}

	n.logger.Debug("Published alert event",
		zap.String("stream", n.stream),
		zap.String("message_id", id),
		zap.String("type", string(event.Type)),
		zap.String("alert_id", event.Alert.ID),
	)
	return nil
}
