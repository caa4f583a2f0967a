package service

import "context"

// MailService sends the "new admin message" notification. Delivery is
// best-effort: callers log failures and never fail the message send on them.
type MailService interface {
	SendNewMessageNotification(ctx context.Context, to, storeName, preview string) error
}
