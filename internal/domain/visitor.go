package domain

import "time"

// VisitorCount is the current value of the site-wide visitor counter.
type VisitorCount struct {
	Count     int64     `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// VisitorStats is the counter value plus its row lifecycle timestamps.
type VisitorStats struct {
	Count          int64      `json:"count"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
	ActiveDuration string     `json:"active_duration"`
}

// ActiveFor returns the duration the counter row has been live, or zero if
// the row has never been seeded.
func (s VisitorStats) ActiveFor() time.Duration {
	if s.CreatedAt == nil || s.UpdatedAt == nil {
		return 0
	}
	return s.UpdatedAt.Sub(*s.CreatedAt)
}
