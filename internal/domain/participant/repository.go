package participant

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving Participant entities.
type Repository interface {
	// Upsert inserts a new active participant or updates the profile fields
	// (username, full name, role, department) of an existing one,
	// reactivating it if needed. Frequency and last participation are
	// preserved on update. Returns true when a new record was created.
	Upsert(ctx context.Context, p *Participant) (created bool, err error)
	GetByID(ctx context.Context, id int64) (*Participant, error)
	// ListActive returns active participants in stable (full_name, id) order.
	ListActive(ctx context.Context) ([]*Participant, error)
	// ListEligible returns active participants whose recurrence window has
	// elapsed as of the given date.
	ListEligible(ctx context.Context, asOf time.Time) ([]*Participant, error)
	ListAll(ctx context.Context) ([]*Participant, error) // For admin inspection
	// ListRecentlyPaired returns active participants whose last participation
	// is on or after the given date.
	ListRecentlyPaired(ctx context.Context, since time.Time) ([]*Participant, error)
	// RecordParticipation stamps last_participation = asOf for every given
	// ID atomically: either all IDs are stamped or none.
	RecordParticipation(ctx context.Context, ids []int64, asOf time.Time) error
	SetFrequency(ctx context.Context, id int64, weeks int) error
	Deactivate(ctx context.Context, id int64) error // Idempotent
}
