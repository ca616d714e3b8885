package participant

import (
	"database/sql"
	"time"
)

// BaseCycle is the base recurrence unit: Frequency is expressed in
// multiples of this period.
const BaseCycle = 7 * 24 * time.Hour

// Participant represents a member of the random coffee pool.
type Participant struct {
	ID                int64          // Telegram user ID, stable and unique
	Username          sql.NullString // To handle optional @username
	FullName          string
	Role              string
	Department        string
	Frequency         int          // Minimum weeks between two participations, >= 1
	LastParticipation sql.NullTime // Absent means "never paired"
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EligibleAt reports whether the participant qualifies for a round held on
// the given date. Inactive participants never qualify. A frequency below 1
// is treated as a misconfiguration and excludes the participant rather than
// failing the round. A participant who never participated qualifies
// immediately; otherwise the full frequency window must have elapsed, with
// the boundary day itself counting as eligible.
func (p *Participant) EligibleAt(today time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.Frequency < 1 {
		return false
	}
	if !p.LastParticipation.Valid {
		return true
	}
	next := p.LastParticipation.Time.Add(time.Duration(p.Frequency) * BaseCycle)
	return !today.Before(next)
}

// DisplayHandle returns the @-prefixed username, or a placeholder when the
// participant has none.
func (p *Participant) DisplayHandle() string {
	if p.Username.Valid && p.Username.String != "" {
		return "@" + p.Username.String
	}
	return "(нет username)"
}
