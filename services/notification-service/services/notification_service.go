package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/common/clients"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/events"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/notification-service/models"
	"github.com/yashrajoria/shopswift/services/notification-service/sender"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrUnsupportedEvent marks events this service has nothing to send for.
var ErrUnsupportedEvent = errors.New("unsupported event type")

type LogStore interface {
	SaveLog(ctx context.Context, log *models.NotificationLog) error
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

// UserLookup is implemented by clients.UserClient.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*clients.User, error)
}

// Deduper is implemented by repository.RedisDeduper.
type Deduper interface {
	Claim(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

type notification struct {
	template string
	subject  func(evt *models.Event) string
	// userKey names the data field holding the account id.
	userKey string
}

func fixed(s string) func(*models.Event) string {
	return func(*models.Event) string { return s }
}

var notifications = map[string]notification{
	events.OrderCreated: {
		template: "order_created.html",
		subject:  fixed("Order Confirmed!"),
		userKey:  "userId",
	},
	events.OrderStatusChanged: {
		template: "order_status_changed.html",
		subject: func(evt *models.Event) string {
			if to := evt.String("to"); to != "" {
				return "Your order is now " + to
			}
			return "Your order has been updated"
		},
		userKey: "userId",
	},
	events.PaymentCompleted: {
		template: "payment_completed.html",
		subject:  fixed("Payment received"),
		userKey:  "userId",
	},
	events.PaymentFailed: {
		template: "payment_failed.html",
		subject:  fixed("Payment Failed"),
		userKey:  "userId",
	},
	events.UserRegistered: {
		template: "welcome.html",
		subject:  fixed("Welcome!"),
		userKey:  "id",
	},
}

type Options struct {
	Attempts int
	Backoff  time.Duration
}

type NotificationService struct {
	repo      LogStore
	users     UserLookup
	email     sender.EmailSender
	dedupe    Deduper
	metrics   *awspkg.MetricsClient
	templates map[string]*template.Template
	attempts  int
	backoff   time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewNotificationService parses every template up front; dedupe may be nil.
func NewNotificationService(repo LogStore, users UserLookup, email sender.EmailSender, dedupe Deduper, metrics *awspkg.MetricsClient, opts Options) (*NotificationService, error) {
	tmpls := make(map[string]*template.Template, len(notifications))
	for eventType, n := range notifications {
		tmpl, err := template.ParseFS(templateFS, "templates/"+n.template)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template for %s: %w", eventType, err)
		}
		tmpls[eventType] = tmpl
	}
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}
	return &NotificationService{
		repo:      repo,
		users:     users,
		email:     email,
		dedupe:    dedupe,
		metrics:   metrics,
		templates: tmpls,
		attempts:  opts.Attempts,
		backoff:   opts.Backoff,
		sleep:     sleepCtx,
	}, nil
}

type recipient struct {
	UserID string
	Email  string
	Name   string
}

type templateView struct {
	Name string
	Data map[string]interface{}
}

// ProcessEvent sends the email for evt. A returned error other than
// ErrUnsupportedEvent means the event should be delivered again later.
func (s *NotificationService) ProcessEvent(ctx context.Context, evt *models.Event) error {
	n, ok := notifications[evt.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEvent, evt.Type)
	}

	dedupeID := eventID(evt)
	if s.dedupe != nil {
		claimed, err := s.dedupe.Claim(ctx, dedupeID)
		if err != nil {
			logger.Warn(ctx, "dedupe unavailable, processing anyway", zap.Error(err))
		} else if !claimed {
			logger.Info(ctx, "duplicate event skipped", zap.String("event", evt.Type), zap.String("key", evt.Key))
			return nil
		}
	}

	rcpt, err := s.resolveRecipient(ctx, evt, evt.String(n.userKey))
	if err != nil && !errors.Is(err, clients.ErrUserNotFound) {
		s.release(ctx, dedupeID)
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if rcpt.Email == "" {
		logger.Warn(ctx, "missing recipient, skipping",
			zap.String("event", evt.Type),
			zap.String("user_id", rcpt.UserID),
		)
		s.saveLog(ctx, evt, rcpt, models.StatusSkipped, 0, "", "no recipient email")
		return nil
	}

	var body bytes.Buffer
	if err := s.templates[evt.Type].Execute(&body, templateView{Name: rcpt.Name, Data: evt.Data}); err != nil {
		logger.Error(ctx, "template render failed", err, zap.String("event", evt.Type))
		s.saveLog(ctx, evt, rcpt, models.StatusFailed, 0, "", err.Error())
		return nil
	}

	s.sendWithRetry(ctx, evt, rcpt, n.subject(evt), body.String())
	return nil
}

func (s *NotificationService) resolveRecipient(ctx context.Context, evt *models.Event, userID string) (recipient, error) {
	rcpt := recipient{UserID: userID, Email: evt.String("email"), Name: evt.String("username")}
	if rcpt.Email != "" || userID == "" {
		return rcpt, nil
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return rcpt, err
	}
	rcpt.Email = u.Email
	rcpt.Name = u.Fullname.FirstName
	if rcpt.Name == "" {
		rcpt.Name = u.Username
	}
	return rcpt, nil
}

func (s *NotificationService) sendWithRetry(ctx context.Context, evt *models.Event, rcpt recipient, subject, body string) {
	var (
		result   sender.SendResult
		lastErr  error
		attempts int
	)
	for attempts < s.attempts {
		if attempts > 0 {
			if err := s.sleep(ctx, time.Duration(attempts)*s.backoff); err != nil {
				lastErr = err
				break
			}
		}
		attempts++

		result, lastErr = s.email.SendEmail(ctx, rcpt.Email, subject, body)
		if lastErr == nil {
			break
		}
		logger.Warn(ctx, "send attempt failed",
			zap.String("event", evt.Type),
			zap.Int("attempt", attempts),
			zap.Error(lastErr),
		)
	}

	dims := map[string]string{"Service": "notification-service", "Event": evt.Type}
	if lastErr != nil {
		logger.Error(ctx, "notification failed", lastErr,
			zap.String("event", evt.Type),
			zap.String("key", evt.Key),
		)
		s.metrics.RecordCountAsync(awspkg.MetricNotificationsFailed, dims)
		s.saveLog(ctx, evt, rcpt, models.StatusFailed, attempts, "", lastErr.Error())
		return
	}

	logger.Info(ctx, "notification sent",
		zap.String("event", evt.Type),
		zap.String("key", evt.Key),
		zap.String("message_id", result.MessageID),
	)
	s.metrics.RecordCountAsync(awspkg.MetricNotificationsSent, dims)
	s.saveLog(ctx, evt, rcpt, models.StatusSent, attempts, result.MessageID, "")
}

func (s *NotificationService) saveLog(ctx context.Context, evt *models.Event, rcpt recipient, status string, attempts int, messageID, errMsg string) {
	entry := &models.NotificationLog{
		EventType: evt.Type,
		EventKey:  evt.Key,
		UserID:    rcpt.UserID,
		Recipient: rcpt.Email,
		Channel:   models.ChannelEmail,
		Status:    status,
		Attempts:  attempts,
		MessageID: messageID,
		Error:     errMsg,
	}
	if err := s.repo.SaveLog(ctx, entry); err != nil {
		logger.Error(ctx, "failed to save notification log", err, zap.String("event", evt.Type))
	}
}

func (s *NotificationService) release(ctx context.Context, id string) {
	if s.dedupe == nil {
		return
	}
	if err := s.dedupe.Release(ctx, id); err != nil {
		logger.Warn(ctx, "failed to release dedupe key", zap.Error(err))
	}
}

func (s *NotificationService) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	logs, total, err := s.repo.GetLogs(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return logs, total, nil
}

// eventID distinguishes repeated events on the same key, such as successive
// status changes of one order.
func eventID(evt *models.Event) string {
	return evt.Type + ":" + evt.Key + ":" + evt.OccurredAt.UTC().Format(time.RFC3339Nano)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
