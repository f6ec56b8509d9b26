package models

import "time"

// DeliveryReport records a completed delivery that consumed stock. Reports are
// never mutated once persisted.
type DeliveryReport struct {
	CanCounts
	ID            string    `json:"_id"`
	DeliveryPlace string    `json:"deliveryPlace"`
	UserPhone     string    `json:"userPhone"`
	Timestamp     time.Time `json:"timestamp"`
}

// DeliveryInput is the validated request to record a delivery.
type DeliveryInput struct {
	CanCounts
	DeliveryPlace string
	UserPhone     string
	// Timestamp is optional; the recorder stamps the server time when zero.
	Timestamp time.Time
}

// PlaceTotals accumulates the cans delivered to one place.
type PlaceTotals struct {
	Cans25L int `json:"cans25L"`
	Cans10L int `json:"cans10L"`
	Cans1L  int `json:"cans1L"`
	Count   int `json:"count"`
}

// ReportTotals sums every can size across a set of reports.
type ReportTotals struct {
	TotalCans25L int `json:"totalCans25L"`
	TotalCans10L int `json:"totalCans10L"`
	TotalCans1L  int `json:"totalCans1L"`
}

// ReportSummary is the filtered report set together with its reductions.
type ReportSummary struct {
	Reports        []DeliveryReport       `json:"reports"`
	Totals         ReportTotals           `json:"totals"`
	ReportsByPlace map[string]PlaceTotals `json:"reportsByPlace"`
	Count          int                    `json:"count"`
}
