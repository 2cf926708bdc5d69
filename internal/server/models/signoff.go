package models

import "time"

// Signoff is a timestamped acknowledgment tying one user to one policy.
// At most one exists per (PolicyID, UserID).
type Signoff struct {
	ID       int64
	PolicyID int64
	UserID   int64
	SignedAt time.Time
}
