// internal/domain/reminder/repository.go
package reminder

import (
	"context"
	"time"
)

// Repository defines operations for the deferred reminder queue.
type Repository interface {
	Create(ctx context.Context, r *Reminder) error
	// ListDue returns unsent reminders with fire_at <= now, oldest first.
	ListDue(ctx context.Context, now time.Time) ([]*Reminder, error)
	// MarkSent stamps sent_at; a marked reminder is never dispatched again,
	// regardless of whether the actual send succeeded.
	MarkSent(ctx context.Context, id int64, at time.Time) error
}
