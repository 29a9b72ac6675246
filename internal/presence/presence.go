package presence

import "time"

// DefaultTimeout is how long a user may stay silent before a stored
// "online" flag stops being believed.
const DefaultTimeout = 5 * time.Minute

// Snapshot is the effective presence of a user at a point in time.
// It is derived per read and never stored.
type Snapshot struct {
	IsOnline   bool       `json:"isOnline"`
	LastSeenAt *time.Time `json:"lastSeenAt"`
}

// Effective applies the presence decay rule: a user counts as online only
// if the stored flag is true AND the last activity is within the timeout
// window. The stored flag is never corrected here; reads do not mutate.
func Effective(isOnline bool, lastSeenAt *time.Time, now time.Time, timeout time.Duration) Snapshot {
	withinWindow := lastSeenAt != nil && now.Sub(*lastSeenAt) <= timeout
	return Snapshot{
		IsOnline:   isOnline && withinWindow,
		LastSeenAt: lastSeenAt,
	}
}
