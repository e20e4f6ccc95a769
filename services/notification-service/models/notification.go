package models

import "time"

const (
	ChannelEmail = "email"

	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// NotificationLog records one delivery attempt sequence for an event.
type NotificationLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventType string    `gorm:"type:varchar(50);index;not null" json:"eventType"`
	EventKey  string    `gorm:"index" json:"eventKey"`
	UserID    string    `gorm:"index" json:"userId"`
	Recipient string    `json:"recipient"`
	Channel   string    `gorm:"type:varchar(20);not null" json:"channel"`
	Status    string    `gorm:"type:varchar(20);index;not null" json:"status"`
	Attempts  int       `json:"attempts"`
	MessageID string    `json:"messageId,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

type NotificationFilter struct {
	UserID    string
	EventType string
	Status    string
	Page      int
	Limit     int
}

// Event mirrors the envelope the other services publish.
type Event struct {
	Type       string                 `json:"type"`
	Key        string                 `json:"key"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// String returns data[key] when it is a non-empty string.
func (e *Event) String(key string) string {
	if e.Data == nil {
		return ""
	}
	s, _ := e.Data[key].(string)
	return s
}
