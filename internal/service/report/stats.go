package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pluckandpay/internal/storage"
)

type DashboardStats struct {
	TotalCollection int64 `json:"totalCollection"`
	ActivePluckers  int   `json:"activePluckers"`
	CollectionDays  int   `json:"collectionDays"`
	TotalPayments   int64 `json:"totalPayments"`
	CollectionTrend int   `json:"collectionTrend"`
	PluckersTrend   int   `json:"pluckersTrend"`
	PaymentsTrend   int   `json:"paymentsTrend"`
}

// Dashboard compares the calendar month containing now against the
// previous one. Trends are integer percentages, 0 when the previous
// month had nothing to compare against.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (DashboardStats, error) {
	const op = "service.report.Dashboard"

	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	endOfMonth := startOfMonth.AddDate(0, 1, 0).Add(-time.Second)
	startOfPrevMonth := startOfMonth.AddDate(0, -1, 0)
	endOfPrevMonth := startOfMonth.Add(-time.Second)

	records, err := s.storage.GetRecordsByDateRange(ctx, startOfMonth, endOfMonth)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("%s: %w", op, err)
	}
	prevRecords, err := s.storage.GetRecordsByDateRange(ctx, startOfPrevMonth, endOfPrevMonth)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("%s: %w", op, err)
	}

	activePluckers, err := s.storage.CountActivePluckers(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("%s: %w", op, err)
	}
	prevActivePluckers, err := s.storage.CountActivePluckersJoinedBefore(ctx, startOfMonth)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("%s: %w", op, err)
	}

	payments, err := s.storage.ListPayments(ctx, storage.PaymentFilter{StartDate: startOfMonth, EndDate: endOfMonth})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("%s: %w", op, err)
	}
	prevPayments, err := s.storage.ListPayments(ctx, storage.PaymentFilter{StartDate: startOfPrevMonth, EndDate: endOfPrevMonth})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("%s: %w", op, err)
	}

	var totalCollection, prevTotalCollection float64
	for _, r := range records {
		totalCollection += r.TotalWeight
	}
	for _, r := range prevRecords {
		prevTotalCollection += r.TotalWeight
	}

	totalPayments := decimal.Zero
	for _, p := range payments {
		totalPayments = totalPayments.Add(p.TotalAmount)
	}
	prevTotalPayments := decimal.Zero
	for _, p := range prevPayments {
		prevTotalPayments = prevTotalPayments.Add(p.TotalAmount)
	}

	return DashboardStats{
		TotalCollection: int64(totalCollection + 0.5),
		ActivePluckers:  activePluckers,
		CollectionDays:  len(records),
		TotalPayments:   totalPayments.Round(0).IntPart(),
		CollectionTrend: trend(totalCollection, prevTotalCollection),
		PluckersTrend:   trend(float64(activePluckers), float64(prevActivePluckers)),
		PaymentsTrend:   trendDecimal(totalPayments, prevTotalPayments),
	}, nil
}

func trend(current, previous float64) int {
	if previous == 0 {
		return 0
	}
	return int((current - previous) / previous * 100)
}

func trendDecimal(current, previous decimal.Decimal) int {
	if previous.IsZero() {
		return 0
	}
	return int(current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}
