package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/notification-service/models"
	"github.com/yashrajoria/shopswift/services/notification-service/services"
)

// EventProcessor is implemented by services.NotificationService.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, evt *models.Event) error
}

// snsEnvelope is the wrapper SNS adds when fanning out to SQS without raw delivery.
type snsEnvelope struct {
	TopicArn string `json:"TopicArn"`
	Message  string `json:"Message"`
}

// DecodeEvent accepts either a bare event or one wrapped in an SNS envelope.
func DecodeEvent(body []byte) (*models.Event, error) {
	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if env.TopicArn != "" && env.Message != "" {
		body = []byte(env.Message)
	}

	var evt models.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if evt.Type == "" {
		return nil, errors.New("decode event: missing type")
	}
	return &evt, nil
}

// handle reports whether the message is finished with and may be acknowledged.
func handle(ctx context.Context, p EventProcessor, body []byte) bool {
	evt, err := DecodeEvent(body)
	if err != nil {
		logger.Error(ctx, "dropping undecodable message", err)
		return true
	}

	err = p.ProcessEvent(ctx, evt)
	switch {
	case err == nil:
		return true
	case errors.Is(err, services.ErrUnsupportedEvent):
		logger.Debug(ctx, "ignoring event", zap.String("event", evt.Type))
		return true
	default:
		logger.Error(ctx, "failed to process event", err,
			zap.String("event", evt.Type),
			zap.String("key", evt.Key),
		)
		return false
	}
}

// wait blocks for d or until ctx ends, reporting whether the full delay elapsed.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
