package sheets

import (
	"context"
	"strings"
	"time"

	"github.com/mamadbah2/watercan/internal/domain/models"
)

// DefaultDeliveryRange is the sheet range delivery rows are appended to.
const DefaultDeliveryRange = "Deliveries!A:G"

var deliveryHeader = []interface{}{"Timestamp", "Place", "Phone", "25L", "10L", "1L", "Report ID"}

// DeliveryMirror copies recorded deliveries into a spreadsheet.
type DeliveryMirror struct {
	repo       Repository
	sheetRange string
}

// NewDeliveryMirror builds a mirror appending to sheetRange.
func NewDeliveryMirror(repo Repository, sheetRange string) *DeliveryMirror {
	if sheetRange == "" {
		sheetRange = DefaultDeliveryRange
	}
	return &DeliveryMirror{repo: repo, sheetRange: sheetRange}
}

// EnsureHeader writes the column titles when the first row of the range is
// empty. It returns true when a header was written.
func (m *DeliveryMirror) EnsureHeader(ctx context.Context) (bool, error) {
	rows, err := m.repo.ReadRange(ctx, firstRow(m.sheetRange))
	if err != nil {
		return false, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		return false, nil
	}
	if err := m.repo.AppendRows(ctx, m.sheetRange, [][]interface{}{deliveryHeader}); err != nil {
		return false, err
	}
	return true, nil
}

// MirrorDelivery appends one row per report:
// timestamp, place, phone, 25L, 10L, 1L, report id.
func (m *DeliveryMirror) MirrorDelivery(ctx context.Context, report models.DeliveryReport) error {
	return m.repo.AppendRows(ctx, m.sheetRange, [][]interface{}{deliveryRow(report)})
}

func deliveryRow(report models.DeliveryReport) []interface{} {
	return []interface{}{
		report.Timestamp.UTC().Format(time.RFC3339),
		report.DeliveryPlace,
		report.UserPhone,
		report.Cans25L,
		report.Cans10L,
		report.Cans1L,
		report.ID,
	}
}

// firstRow narrows "Sheet!A:G" to "Sheet!A1:G1".
func firstRow(sheetRange string) string {
	sheet, cells, found := strings.Cut(sheetRange, "!")
	if !found {
		return sheetRange + "!1:1"
	}
	from, to, found := strings.Cut(cells, ":")
	if !found {
		return sheet + "!" + columnOnly(from) + "1"
	}
	return sheet + "!" + columnOnly(from) + "1:" + columnOnly(to) + "1"
}

func columnOnly(cell string) string {
	return strings.TrimRight(cell, "0123456789")
}
