package models

import "time"

// DateRange bounds a query by timestamp. Both ends are inclusive and either
// may be nil for an open-ended range.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// IsZero reports whether the range has no bounds.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}
