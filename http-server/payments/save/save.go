package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"pluckandpay/internal/httpapi"
	"pluckandpay/internal/storage"
)

type PaymentSaver interface {
	CreatePayment(ctx context.Context, p storage.Payment) (storage.Payment, error)
}

type detailRequest struct {
	PluckerID int64           `json:"pluckerId"`
	Amount    decimal.Decimal `json:"amount"`
	RecordIDs []int64         `json:"recordIds"`
}

// SavePayment persists a payment batch, typically the draft returned by
// the generate endpoint.
func SavePayment(log *slog.Logger, saver PaymentSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payments.save.SavePayment"

		var req struct {
			Period      string          `json:"period"`
			StartDate   string          `json:"startDate"`
			EndDate     string          `json:"endDate"`
			Status      string          `json:"status"`
			TotalAmount decimal.Decimal `json:"totalAmount"`
			Date        string          `json:"date"`
			Details     []detailRequest `json:"details"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.BadRequest(w, r, "Invalid JSON")
			return
		}

		var errs []httpapi.FieldErr
		if req.Period == "" {
			errs = append(errs, httpapi.FieldErr{Field: "period", Message: "period is required"})
		}

		var start, end time.Time
		if req.StartDate == "" {
			errs = append(errs, httpapi.FieldErr{Field: "startDate", Message: "startDate is required"})
		} else if t, err := httpapi.ParseDate(req.StartDate); err != nil {
			errs = append(errs, httpapi.FieldErr{Field: "startDate", Message: "invalid date"})
		} else {
			start = t
		}
		if req.EndDate == "" {
			errs = append(errs, httpapi.FieldErr{Field: "endDate", Message: "endDate is required"})
		} else if t, err := httpapi.ParseDate(req.EndDate); err != nil {
			errs = append(errs, httpapi.FieldErr{Field: "endDate", Message: "invalid date"})
		} else {
			end = t
		}

		status := req.Status
		if status == "" {
			status = storage.PaymentPending
		}
		switch status {
		case storage.PaymentPending, storage.PaymentCompleted, storage.PaymentCancelled:
		default:
			errs = append(errs, httpapi.FieldErr{Field: "status", Message: "invalid status"})
		}

		for i, d := range req.Details {
			if d.PluckerID == 0 {
				errs = append(errs, httpapi.FieldErr{
					Field:   fmt.Sprintf("details[%d].pluckerId", i),
					Message: "pluckerId is required",
				})
			}
		}
		if len(errs) > 0 {
			httpapi.Validation(w, r, errs)
			return
		}

		date := time.Now()
		if req.Date != "" {
			if t, err := httpapi.ParseDate(req.Date); err == nil {
				date = t
			}
		}

		details := make([]storage.PaymentDetail, 0, len(req.Details))
		for _, d := range req.Details {
			details = append(details, storage.PaymentDetail{
				PluckerID: d.PluckerID,
				Amount:    d.Amount,
				RecordIDs: d.RecordIDs,
			})
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		payment, err := saver.CreatePayment(ctx, storage.Payment{
			Period:       req.Period,
			StartDate:    start,
			EndDate:      end,
			Date:         date,
			Status:       status,
			PluckerCount: len(details),
			TotalAmount:  req.TotalAmount,
			Details:      details,
		})
		if err != nil {
			log.Error("failed to save payment", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, payment)
	}
}
