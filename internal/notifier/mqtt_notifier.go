package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"climate-sentinel/internal/config"
	"climate-sentinel/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// DefaultPublishTimeout bound on one publish including the broker acknowledgement
const DefaultPublishTimeout = 5 * time.Second

// ErrPublishTimeout the broker did not acknowledge in time
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher the slice of an MQTT client the notifier needs; Publish must return once ctx is done
type Publisher interface {
	Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error
}

// MQTTClient paho client wrapper
type MQTTClient struct {
	client mqtt.Client
}

// NewMQTTClient connects to the broker
func NewMQTTClient(cfg *config.MQTTConfig) (*MQTTClient, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &MQTTClient{client: client}, nil
}

// Publish sends one message and waits for the broker acknowledgement until ctx is done.
// While paho reconnects a QoS>0 token stays pending, so the wait is always bounded.
func (c *MQTTClient) Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if err := waitToken(ctx, token, DefaultPublishTimeout); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// waitToken waits for token completion, ctx cancellation or timeout, whichever comes first
func waitToken(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrPublishTimeout, ctx.Err())
	case <-timer.C:
		return ErrPublishTimeout
	}
}

// Disconnect closes the connection after a 250ms grace period
func (c *MQTTClient) Disconnect() {
	c.client.Disconnect(250)
}

// MQTTNotifier publishes alert events to {prefix}/{zoneId}
type MQTTNotifier struct {
	publisher Publisher
	prefix    string
	qos       byte
	timeout   time.Duration
	logger    *zap.Logger
}

// MQTTOption configures an MQTTNotifier
type MQTTOption func(*MQTTNotifier)

// WithPublishTimeout bounds each event delivery; non-positive values are ignored
func WithPublishTimeout(d time.Duration) MQTTOption {
	return func(n *MQTTNotifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// NewMQTTNotifier creates an MQTT notifier
func NewMQTTNotifier(publisher Publisher, prefix string, qos byte, logger *zap.Logger, opts ...MQTTOption) *MQTTNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &MQTTNotifier{
		publisher: publisher,
		prefix:    strings.TrimSuffix(prefix, "/"),
		qos:       qos,
		timeout:   DefaultPublishTimeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Topic of a zone's alert events
func (n *MQTTNotifier) Topic(zoneID string) string {
	return n.prefix + "/" + zoneID
}

func (n *MQTTNotifier) AlertRaised(ctx context.Context, alert models.Alert) error {
	return n.publish(ctx, NewAlertEvent(EventRaised, alert))
}

func (n *MQTTNotifier) AlertCleared(ctx context.Context, alert models.Alert) error {
	return n.publish(ctx, NewAlertEvent(EventCleared, alert))
}

func (n *MQTTNotifier) publish(ctx context.Context, event AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}
	topic := n.Topic(event.Alert.ZoneID)

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.publisher.Publish(ctx, topic, n.qos, false, payload); err != nil {
		return err
	}
	n.logger.Debug("Published alert event",
		zap.String("topic", topic),
		zap.String("type", string(event.Type)),
		zap.String("alert_id", event.Alert.ID),
	)
	return nil
}
