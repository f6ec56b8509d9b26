package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository"
)

const (
	dateLayout      = "2006-01-02"
	digestTopPlaces = 3
)

// StockReader exposes the current snapshot for the digest.
type StockReader interface {
	Current(ctx context.Context) (models.StockSnapshot, error)
}

// Service merges stock history and delivery reports into feeds and summaries.
type Service struct {
	stock   repository.StockRepository
	reports repository.DeliveryReportRepository
	ledger  StockReader
	logger  *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(stock repository.StockRepository, reports repository.DeliveryReportRepository, ledger StockReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{stock: stock, reports: reports, ledger: ledger, logger: logger}
}

// ListActivities returns every delivery and stock adjustment inside window,
// newest first. Entries with equal timestamps keep deliveries before stock
// rows, each in storage order.
func (s *Service) ListActivities(ctx context.Context, window models.DateRange) ([]models.Activity, error) {
	reports, err := s.reports.List(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("load delivery reports: %w", err)
	}

	adjustments, err := s.stock.ListAdjustments(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("load stock adjustments: %w", err)
	}

	activities := make([]models.Activity, 0, len(reports)+len(adjustments))
	for _, report := range reports {
		activities = append(activities, models.ActivityFromReport(report))
	}
	for _, adjustment := range adjustments {
		activities = append(activities, models.ActivityFromAdjustment(adjustment))
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})

	s.logger.Debug("activities listed",
		zap.Int("deliveries", len(reports)),
		zap.Int("adjustments", len(adjustments)))
	return activities, nil
}

// Reports returns the delivery reports inside window, newest first, with
// their totals and per-place grouping.
func (s *Service) Reports(ctx context.Context, window models.DateRange) (models.ReportSummary, error) {
	reports, err := s.reports.List(ctx, window)
	if err != nil {
		return models.ReportSummary{}, fmt.Errorf("load delivery reports: %w", err)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})

	return models.ReportSummary{
		Reports:        reports,
		Totals:         Totals(reports),
		ReportsByPlace: GroupByPlace(reports),
		Count:          len(reports),
	}, nil
}

// Totals sums every can size across reports.
func Totals(reports []models.DeliveryReport) models.ReportTotals {
	var totals models.ReportTotals
	for _, report := range reports {
		totals.TotalCans25L += report.Cans25L
		totals.TotalCans10L += report.Cans10L
		totals.TotalCans1L += report.Cans1L
	}
	return totals
}

// GroupByPlace accumulates quantities and report counts per delivery place.
func GroupByPlace(reports []models.DeliveryReport) map[string]models.PlaceTotals {
	byPlace := make(map[string]models.PlaceTotals)
	for _, report := range reports {
		place := byPlace[report.DeliveryPlace]
		place.Cans25L += report.Cans25L
		place.Cans10L += report.Cans10L
		place.Cans1L += report.Cans1L
		place.Count++
		byPlace[report.DeliveryPlace] = place
	}
	return byPlace
}

// Digest renders a short text summary of deliveries within window and the
// current stock, suitable for a chat message.
func (s *Service) Digest(ctx context.Context, window models.DateRange) (string, error) {
	summary, err := s.Reports(ctx, window)
	if err != nil {
		return "", err
	}

	current, err := s.ledger.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("load current stock: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Deliveries %s\n", describeWindow(window))

	if summary.Count == 0 {
		b.WriteString("No deliveries recorded.\n")
	} else {
		fmt.Fprintf(&b, "%d deliveries: 25L x%d, 10L x%d, 1L x%d\n",
			summary.Count,
			summary.Totals.TotalCans25L,
			summary.Totals.TotalCans10L,
			summary.Totals.TotalCans1L)

		for _, place := range topPlaces(summary.ReportsByPlace, digestTopPlaces) {
			totals := summary.ReportsByPlace[place]
			fmt.Fprintf(&b, "- %s: %d deliveries (25L x%d, 10L x%d, 1L x%d)\n",
				place, totals.Count, totals.Cans25L, totals.Cans10L, totals.Cans1L)
		}
	}

	fmt.Fprintf(&b, "Stock on hand: 25L x%d, 10L x%d, 1L x%d",
		current.Cans25L, current.Cans10L, current.Cans1L)
	return b.String(), nil
}

func topPlaces(byPlace map[string]models.PlaceTotals, limit int) []string {
	places := make([]string, 0, len(byPlace))
	for place := range byPlace {
		places = append(places, place)
	}
	sort.Slice(places, func(i, j int) bool {
		a, b := byPlace[places[i]], byPlace[places[j]]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return places[i] < places[j]
	})
	if len(places) > limit {
		places = places[:limit]
	}
	return places
}

func describeWindow(window models.DateRange) string {
	switch {
	case window.Start != nil && window.End != nil:
		return fmt.Sprintf("%s to %s", window.Start.Format(dateLayout), window.End.Format(dateLayout))
	case window.Start != nil:
		return "since " + window.Start.Format(dateLayout)
	case window.End != nil:
		return "until " + window.End.Format(dateLayout)
	default:
		return "(all time)"
	}
}

// PreviousDays returns the window covering the days full calendar days
// before now, in loc.
func PreviousDays(now time.Time, days int, loc *time.Location) models.DateRange {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	start := today.AddDate(0, 0, -days)
	end := today.Add(-time.Nanosecond)
	return models.DateRange{Start: &start, End: &end}
}
