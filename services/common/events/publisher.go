package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/common/logger"
)

// Event types
const (
	OrderCreated       = "order_created"
	OrderStatusChanged = "order_status_changed"
	PaymentCompleted   = "payment_completed"
	PaymentFailed      = "payment_failed"
	UserRegistered     = "user_registered"
)

// Event is the envelope published for downstream consumers. Delivery is
// best-effort and never part of a request's outcome.
type Event struct {
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

func New(eventType, key string, data interface{}) Event {
	return Event{Type: eventType, Key: key, OccurredAt: time.Now().UTC(), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NopPublisher drops events; used when no backend is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// SNSEventPublisher publishes to a single SNS topic.
type SNSEventPublisher struct {
	client   awspkg.SNSPublisher
	topicArn string
}

func NewSNSEventPublisher(client awspkg.SNSPublisher, topicArn string) *SNSEventPublisher {
	return &SNSEventPublisher{client: client, topicArn: topicArn}
}

func (p *SNSEventPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.client.Publish(ctx, p.topicArn, evt.Type, body)
}

func (p *SNSEventPublisher) Close() error { return nil }

// KafkaEventPublisher writes events keyed by entity id.
type KafkaEventPublisher struct {
	writer *kafka.Writer
}

func NewKafkaEventPublisher(brokers []string, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
	}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Key),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	})
}

func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

// Config selects the publisher backend.
type Config struct {
	Backend      string // "sns", "kafka" or empty
	SNSTopicArn  string
	KafkaBrokers string
	KafkaTopic   string
}

// NewPublisher builds the configured publisher, falling back to NopPublisher.
func NewPublisher(ctx context.Context, cfg Config) (Publisher, error) {
	switch strings.ToLower(cfg.Backend) {
	case "sns":
		awsCfg, err := awspkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return NewSNSEventPublisher(awspkg.NewSNSClient(awsCfg), cfg.SNSTopicArn), nil
	case "kafka":
		var brokers []string
		for _, b := range strings.Split(cfg.KafkaBrokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		if len(brokers) == 0 {
			return nil, fmt.Errorf("kafka backend requires KAFKA_BROKERS")
		}
		return NewKafkaEventPublisher(brokers, cfg.KafkaTopic), nil
	case "", "none":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// PublishAsync publishes on a detached context and logs failures.
func PublishAsync(p Publisher, evt Event) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, evt); err != nil {
			logger.Log.Warn("failed to publish event",
				zap.String("type", evt.Type),
				zap.String("key", evt.Key),
				zap.Error(err),
			)
		}
	}()
}
