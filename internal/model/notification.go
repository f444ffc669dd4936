package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidNotificationType = errors.New("model: invalid notification type")

type NotificationType string

const (
	NotificationInfo     NotificationType = "info"
	NotificationReminder NotificationType = "reminder"
	NotificationLevelUp  NotificationType = "level-up"
	NotificationAlert    NotificationType = "alert"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationInfo, NotificationReminder, NotificationLevelUp, NotificationAlert:
		return true
	default:
		return false
	}
}

// Expires reports whether notifications of this type self-remove.
func (t NotificationType) Expires() bool {
	return t != NotificationAlert
}

type Notification struct {
	ID        string           `json:"id"`
	QuestID   string           `json:"questId,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
}

func (n Notification) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("model: notification id is required")
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidNotificationType, n.Type)
	}
	if n.Timestamp.IsZero() {
		return errors.New("model: notification timestamp is required")
	}
	return nil
}
