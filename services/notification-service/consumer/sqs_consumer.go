package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/yashrajoria/shopswift/services/common/logger"
)

// SQSAPI is the subset of *sqs.Client the consumer uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SQSConsumer struct {
	client       SQSAPI
	queueURL     string
	processor    EventProcessor
	errorBackoff time.Duration
}

func NewSQSConsumer(client SQSAPI, queueURL string, processor EventProcessor) *SQSConsumer {
	return &SQSConsumer{
		client:       client,
		queueURL:     queueURL,
		processor:    processor,
		errorBackoff: 5 * time.Second,
	}
}

// Run long-polls the queue until ctx is cancelled. Messages are deleted only
// once handled; failures are left for SQS to redeliver after the visibility timeout.
func (c *SQSConsumer) Run(ctx context.Context) {
	logger.Log.Info("sqs consumer started", zap.String("queue", c.queueURL))
	for ctx.Err() == nil {
		if err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error(ctx, "sqs receive failed", err)
			wait(ctx, c.errorBackoff)
		}
	}
	logger.Log.Info("sqs consumer stopped")
}

func (c *SQSConsumer) poll(ctx context.Context) error {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
	})
	if err != nil {
		return err
	}
	for _, msg := range out.Messages {
		c.processMessage(ctx, msg)
	}
	return nil
}

func (c *SQSConsumer) processMessage(ctx context.Context, msg types.Message) {
	body := aws.ToString(msg.Body)
	if body == "" || aws.ToString(msg.ReceiptHandle) == "" {
		logger.Warn(ctx, "received empty sqs message", zap.String("message_id", aws.ToString(msg.MessageId)))
		return
	}

	msgCtx := logger.WithContext(ctx, aws.ToString(msg.MessageId))
	if !handle(msgCtx, c.processor, []byte(body)) {
		return
	}

	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		logger.Error(msgCtx, "failed to delete sqs message", err)
	}
}
