// Package notify formats shipment notifications and delivers them over
// the configured transport (Telegram bot or SMS gateway).
package notify

import (
	"context"
	"fmt"
)

// Sender delivers plain text to the configured recipient. Delivery is
// best-effort: callers log a DeliveryError and move on, never retrying
// within the same pass.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// DeliveryError means the notification channel rejected or failed a send.
type DeliveryError struct {
	Transport string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Transport, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
