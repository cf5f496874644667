package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"pluckandpay/internal/httpapi"
	"pluckandpay/internal/storage"
)

type PaymentUpdater interface {
	UpdatePayment(ctx context.Context, id int64, upd storage.PaymentUpdate) (storage.Payment, error)
}

func UpdatePayment(log *slog.Logger, updater PaymentUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payments.update.UpdatePayment"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpapi.NotFound(w, r, "Payment not found")
			return
		}

		var req struct {
			Period      *string          `json:"period"`
			StartDate   *string          `json:"startDate"`
			EndDate     *string          `json:"endDate"`
			Date        *string          `json:"date"`
			Status      *string          `json:"status"`
			TotalAmount *decimal.Decimal `json:"totalAmount"`
			Details     []struct {
				PluckerID int64           `json:"pluckerId"`
				Amount    decimal.Decimal `json:"amount"`
				RecordIDs []int64         `json:"recordIds"`
			} `json:"details"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.BadRequest(w, r, "Invalid JSON")
			return
		}

		var errs []httpapi.FieldErr
		upd := storage.PaymentUpdate{
			Period:      req.Period,
			Status:      req.Status,
			TotalAmount: req.TotalAmount,
		}
		parseInto := func(field string, src *string, dst **time.Time) {
			if src == nil {
				return
			}
			t, err := httpapi.ParseDate(*src)
			if err != nil {
				errs = append(errs, httpapi.FieldErr{Field: field, Message: "invalid date"})
				return
			}
			*dst = &t
		}
		parseInto("startDate", req.StartDate, &upd.StartDate)
		parseInto("endDate", req.EndDate, &upd.EndDate)
		parseInto("date", req.Date, &upd.Date)

		if req.Status != nil {
			switch *req.Status {
			case storage.PaymentPending, storage.PaymentCompleted, storage.PaymentCancelled:
			default:
				errs = append(errs, httpapi.FieldErr{Field: "status", Message: "invalid status"})
			}
		}
		if req.Details != nil {
			upd.Details = make([]storage.PaymentDetail, 0, len(req.Details))
			for _, d := range req.Details {
				upd.Details = append(upd.Details, storage.PaymentDetail{
					PluckerID: d.PluckerID,
					Amount:    d.Amount,
					RecordIDs: d.RecordIDs,
				})
			}
		}
		if len(errs) > 0 {
			httpapi.Validation(w, r, errs)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		payment, err := updater.UpdatePayment(ctx, id, upd)
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.NotFound(w, r, "Payment not found")
			return
		}
		if err != nil {
			log.Error("failed to update payment", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, payment)
	}
}
