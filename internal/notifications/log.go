package notifications

import (
	"context"

	"github.com/angelmondragon/storefront/pkg/logger"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (l *LogNotifier) Notify(ctx context.Context, owner string, n Notification) error {
	ctx = l.logg.WithFields(ctx, map[string]any{
		"cart_owner":         owner,
		"notification_level": string(n.Level),
	})
	if n.Level == LevelError {
		l.logg.Warn(ctx, n.Message)
		return nil
	}
	l.logg.Info(ctx, n.Message)
	return nil
}
