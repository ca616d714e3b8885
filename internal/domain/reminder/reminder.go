// internal/domain/reminder/reminder.go
package reminder

import (
	"database/sql"
	"time"
)

// Reminder is a deferred one-shot notification stored as data: a timer loop
// picks up due records and hands their payload to the transport. Nothing is
// captured in closures, so pending reminders survive a process restart.
// Corresponds to the 'reminders' table.
type Reminder struct {
	ID            int64
	ParticipantID int64
	FireAt        time.Time
	Payload       string // Final message text, partner reference already rendered
	SentAt        sql.NullTime
	CreatedAt     time.Time
}
