package models

import "time"

// CanCounts groups the three can sizes handled by the operation.
type CanCounts struct {
	Cans25L int `json:"cans25L"`
	Cans10L int `json:"cans10L"`
	Cans1L  int `json:"cans1L"`
}

// Negative reports whether any component is below zero.
func (c CanCounts) Negative() bool {
	return c.Cans25L < 0 || c.Cans10L < 0 || c.Cans1L < 0
}

// Covers reports whether every component of c is at least the matching component of req.
func (c CanCounts) Covers(req CanCounts) bool {
	return c.Cans25L >= req.Cans25L && c.Cans10L >= req.Cans10L && c.Cans1L >= req.Cans1L
}

// Sub returns c minus other, componentwise.
func (c CanCounts) Sub(other CanCounts) CanCounts {
	return CanCounts{
		Cans25L: c.Cans25L - other.Cans25L,
		Cans10L: c.Cans10L - other.Cans10L,
		Cans1L:  c.Cans1L - other.Cans1L,
	}
}

// Add returns c plus other, componentwise.
func (c CanCounts) Add(other CanCounts) CanCounts {
	return CanCounts{
		Cans25L: c.Cans25L + other.Cans25L,
		Cans10L: c.Cans10L + other.Cans10L,
		Cans1L:  c.Cans1L + other.Cans1L,
	}
}

// StockSnapshot is the single current inventory record.
// Version grows by one on every committed write.
type StockSnapshot struct {
	CanCounts
	ID          string    `json:"_id"`
	LastUpdated time.Time `json:"lastUpdated"`
	Version     int64     `json:"version"`
}

// StockAdjustment is one historical write of the ledger: the lazy zero
// initialization or an admin overwrite.
type StockAdjustment struct {
	CanCounts
	ID          string    `json:"_id"`
	LastUpdated time.Time `json:"lastUpdated"`
}
