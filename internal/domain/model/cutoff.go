package model

import "time"

// Cutoff is the oldest point of history an export includes. A zero Cutoff
// admits every record.
type Cutoff struct {
	Time  time.Time
	Block int64
}

// Admits reports whether tx is at or after the cutoff.
func (c Cutoff) Admits(tx Transaction) bool {
	if !c.Time.IsZero() && tx.Timestamp.Before(c.Time) {
		return false
	}
	if c.Block > 0 && tx.Block < c.Block {
		return false
	}
	return true
}

// IsZero reports whether the cutoff covers the full history.
func (c Cutoff) IsZero() bool {
	return c.Time.IsZero() && c.Block <= 0
}
