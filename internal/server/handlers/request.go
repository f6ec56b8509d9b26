package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/watercan/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Quantity decodes a can count sent as a JSON number or numeric string.
// null, missing and "" decode to zero and fractions are truncated; anything
// else is rejected.
type Quantity int

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*q = 0
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*q = 0
			return nil
		}
	}

	n, err := parseQuantity(raw)
	if err != nil {
		return err
	}
	*q = Quantity(n)
	return nil
}

// MaxQuantity bounds a single can count so report sums cannot overflow.
const MaxQuantity = math.MaxInt32

func parseQuantity(raw string) (int, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > MaxQuantity || n < -MaxQuantity {
			return 0, quantityOutOfRange(raw)
		}
		return int(n), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, models.NewValidationError("quantity", fmt.Sprintf("%s is not a valid number", raw))
	}
	if math.Abs(f) > MaxQuantity {
		return 0, quantityOutOfRange(raw)
	}
	return int(f), nil
}

func quantityOutOfRange(raw string) error {
	return models.NewValidationError("quantity", fmt.Sprintf("%s exceeds %d", raw, MaxQuantity))
}

// Date decodes RFC 3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return models.NewValidationError("date", "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", dateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, models.NewValidationError("date", fmt.Sprintf("%q is not a valid date", value))
}

type countsRequest struct {
	Cans25L Quantity `json:"cans25L"`
	Cans10L Quantity `json:"cans10L"`
	Cans1L  Quantity `json:"cans1L"`
}

func (r countsRequest) counts() models.CanCounts {
	return models.CanCounts{
		Cans25L: int(r.Cans25L),
		Cans10L: int(r.Cans10L),
		Cans1L:  int(r.Cans1L),
	}
}

type deliveryRequest struct {
	countsRequest
	DeliveryPlace string `json:"deliveryPlace"`
	UserPhone     string `json:"userPhone"`
	Timestamp     *Date  `json:"timestamp"`
}

func (r deliveryRequest) input() models.DeliveryInput {
	in := models.DeliveryInput{
		CanCounts:     r.counts(),
		DeliveryPlace: r.DeliveryPlace,
		UserPhone:     r.UserPhone,
	}
	if r.Timestamp != nil {
		in.Timestamp = r.Timestamp.Time
	}
	return in
}

type orderRequest struct {
	countsRequest
	DeliveryPlace string `json:"deliveryPlace"`
	DeliveryDate  *Date  `json:"deliveryDate"`
}

func (r orderRequest) input() models.OrderInput {
	in := models.OrderInput{
		CanCounts:     r.counts(),
		DeliveryPlace: r.DeliveryPlace,
	}
	if r.DeliveryDate != nil {
		in.DeliveryDate = r.DeliveryDate.Time
	}
	return in
}

type completeOrderRequest struct {
	UserPhone string `json:"userPhone"`
}

// bindJSON decodes the body and reports malformed input as a validation error.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return models.NewValidationError("body", err.Error())
	}
	return nil
}

// dateRangeFromQuery reads the optional startDate and endDate parameters.
func dateRangeFromQuery(c *gin.Context) (models.DateRange, error) {
	var window models.DateRange
	if raw := c.Query("startDate"); raw != "" {
		start, err := parseDate(raw)
		if err != nil {
			return models.DateRange{}, models.NewValidationError("startDate", err.Error())
		}
		window.Start = &start
	}
	if raw := c.Query("endDate"); raw != "" {
		end, err := parseDate(raw)
		if err != nil {
			return models.DateRange{}, models.NewValidationError("endDate", err.Error())
		}
		window.End = &end
	}
	if window.Start != nil && window.End != nil && window.End.Before(*window.Start) {
		return models.DateRange{}, models.NewValidationError("endDate", "must not be before startDate")
	}
	return window, nil
}
