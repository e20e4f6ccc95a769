package consumer

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/yashrajoria/shopswift/services/common/logger"
)

// KafkaReader is the subset of *kafka.Reader the consumer uses.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaReader(brokers, topics []string, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	})
}

type KafkaConsumer struct {
	reader       KafkaReader
	processor    EventProcessor
	errorBackoff time.Duration
}

func NewKafkaConsumer(reader KafkaReader, processor EventProcessor) *KafkaConsumer {
	return &KafkaConsumer{reader: reader, processor: processor, errorBackoff: 5 * time.Second}
}

// Run consumes until ctx is cancelled. A message that fails is retried in
// place so offsets are only committed past handled messages.
func (c *KafkaConsumer) Run(ctx context.Context) {
	logger.Log.Info("kafka consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				break
			}
			logger.Error(ctx, "kafka fetch failed", err)
			if !wait(ctx, c.errorBackoff) {
				break
			}
			continue
		}

		msgCtx := logger.WithContext(ctx, msg.Topic+"/"+strconv.Itoa(msg.Partition)+"/"+strconv.FormatInt(msg.Offset, 10))
		for !handle(msgCtx, c.processor, msg.Value) {
			if !wait(ctx, c.errorBackoff) {
				logger.Log.Info("kafka consumer stopped")
				return
			}
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(msgCtx, "failed to commit kafka offset", err, zap.Int64("offset", msg.Offset))
		}
	}
	logger.Log.Info("kafka consumer stopped")
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
