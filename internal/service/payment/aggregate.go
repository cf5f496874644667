package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pluckandpay/internal/storage"
)

type RecordStorage interface {
	GetRecordsByDateRange(ctx context.Context, start, end time.Time) ([]storage.CollectionRecord, error)
}

type Service struct {
	storage RecordStorage
}

func NewService(storage RecordStorage) *Service {
	return &Service{storage: storage}
}

// GeneratePayment derives a draft payment from every collection record
// dated within the inclusive [start, end] range: per detail line,
// amount = weight × the record's average price, accumulated per plucker.
// The draft is not persisted; a range with no records is a valid draft
// with zero pluckers and a zero total.
func (s *Service) GeneratePayment(ctx context.Context, start, end time.Time) (storage.Payment, error) {
	const op = "service.payment.GeneratePayment"

	records, err := s.storage.GetRecordsByDateRange(ctx, start, end)
	if err != nil {
		return storage.Payment{}, fmt.Errorf("%s: %w", op, err)
	}

	// Accumulate per plucker, keeping first-appearance order so the
	// draft's detail lines come out stable.
	totals := make(map[int64]*storage.PaymentDetail)
	var order []int64
	totalAmount := decimal.Zero

	for _, rec := range records {
		for _, line := range rec.Details {
			amount := decimal.NewFromFloat(line.Weight).Mul(rec.AveragePrice)

			detail, ok := totals[line.PluckerID]
			if !ok {
				detail = &storage.PaymentDetail{PluckerID: line.PluckerID, Amount: decimal.Zero}
				totals[line.PluckerID] = detail
				order = append(order, line.PluckerID)
			}

			detail.Amount = detail.Amount.Add(amount)
			detail.RecordIDs = append(detail.RecordIDs, rec.ID)
			totalAmount = totalAmount.Add(amount)
		}
	}

	details := make([]storage.PaymentDetail, 0, len(order))
	for _, id := range order {
		details = append(details, *totals[id])
	}

	return storage.Payment{
		Period:       fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
		StartDate:    start,
		EndDate:      end,
		Date:         time.Now(),
		Status:       storage.PaymentPending,
		PluckerCount: len(details),
		TotalAmount:  totalAmount,
		Details:      details,
	}, nil
}
