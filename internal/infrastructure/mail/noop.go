package mail

import (
	"context"

	"github.com/Adnan8101/bharatverse/pkg/logger"
)

// Noop stands in when Gmail credentials are absent (local development).
type Noop struct{}

func (Noop) SendNewMessageNotification(_ context.Context, to, _, _ string) error {
	logger.Info("Mail: notification to %s skipped (mail disabled)", to)
	return nil
}
