package generate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"pluckandpay/internal/httpapi"
	"pluckandpay/internal/storage"
)

type PaymentGenerator interface {
	GeneratePayment(ctx context.Context, start, end time.Time) (storage.Payment, error)
}

// GeneratePayment returns a draft payment for the inclusive date range.
// The draft is not persisted; the client posts it back to the payments
// create endpoint to store it.
func GeneratePayment(log *slog.Logger, generator PaymentGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payments.generate.GeneratePayment"

		var req struct {
			StartDate string `json:"startDate"`
			EndDate   string `json:"endDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.BadRequest(w, r, "Invalid JSON")
			return
		}

		var errs []httpapi.FieldErr
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
		if len(errs) == 0 && end.Before(start) {
			errs = append(errs, httpapi.FieldErr{Field: "endDate", Message: "endDate must not be before startDate"})
		}
		if len(errs) > 0 {
			httpapi.Validation(w, r, errs)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		draft, err := generator.GeneratePayment(ctx, start, end)
		if err != nil {
			log.Error("failed to generate payment", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, draft)
	}
}
