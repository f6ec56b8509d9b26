package models

import "time"

// ActivityKind tags an activity feed entry.
type ActivityKind string

const (
	ActivityDelivery ActivityKind = "delivery"
	ActivityStock    ActivityKind = "stock"
)

// Activity is a single entry of the merged delivery/stock feed. It is derived
// on read and never stored.
type Activity struct {
	CanCounts
	Kind          ActivityKind `json:"type"`
	ID            string       `json:"_id"`
	DeliveryPlace string       `json:"deliveryPlace,omitempty"`
	UserPhone     string       `json:"userPhone,omitempty"`
	LastUpdated   *time.Time   `json:"lastUpdated,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

// ActivityFromReport tags a delivery report as an activity.
func ActivityFromReport(r DeliveryReport) Activity {
	return Activity{
		Kind:          ActivityDelivery,
		ID:            r.ID,
		CanCounts:     r.CanCounts,
		DeliveryPlace: r.DeliveryPlace,
		UserPhone:     r.UserPhone,
		Timestamp:     r.Timestamp,
	}
}

// ActivityFromAdjustment tags a stock history row as an activity.
func ActivityFromAdjustment(a StockAdjustment) Activity {
	updated := a.LastUpdated
	return Activity{
		Kind:        ActivityStock,
		ID:          a.ID,
		CanCounts:   a.CanCounts,
		LastUpdated: &updated,
		Timestamp:   a.LastUpdated,
	}
}
