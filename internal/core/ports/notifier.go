package ports

import "context"

// Notifier delivers short messages (SMS) to a phone number. A delivery
// failure must surface as domain.ErrNotifierUnavailable so callers can abort
// and retry.
type Notifier interface {
	Deliver(ctx context.Context, phone, message string) error
}
