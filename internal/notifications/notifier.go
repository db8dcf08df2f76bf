package notifications

import (
	"context"
	"time"

	"go.uber.org/multierr"
)

// Level classifies a notification for the display surface.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient, human-readable message addressed to one cart owner.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}

// Notifier delivers notifications. Callers treat delivery as fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, owner string, n Notification) error
}

func Success(message string) Notification {
	return Notification{Level: LevelSuccess, Message: message, SentAt: time.Now().UTC()}
}

func Failure(message string) Notification {
	return Notification{Level: LevelError, Message: message, SentAt: time.Now().UTC()}
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(context.Context, string, Notification) error { return nil }

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, owner string, n Notification) error {
	var err error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		err = multierr.Append(err, notifier.Notify(ctx, owner, n))
	}
	return err
}
