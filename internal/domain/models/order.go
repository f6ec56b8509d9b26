package models

import "time"

// Order is a pending delivery request waiting to be completed.
type Order struct {
	CanCounts
	ID            string    `json:"_id"`
	DeliveryPlace string    `json:"deliveryPlace"`
	DeliveryDate  time.Time `json:"deliveryDate"`
}

// OrderInput carries the mutable fields of an order for create and update.
type OrderInput struct {
	CanCounts
	DeliveryPlace string
	// DeliveryDate defaults to the current time when zero.
	DeliveryDate time.Time
}
