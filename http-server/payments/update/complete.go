package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"pluckandpay/internal/httpapi"
	"pluckandpay/internal/storage"
)

type PaymentCompleter interface {
	CompletePayment(ctx context.Context, id int64) (storage.Payment, error)
}

// CompletePayment marks a pending payment completed. Completing one
// that is already completed is rejected with 400, not silently accepted.
func CompletePayment(log *slog.Logger, completer PaymentCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payments.update.CompletePayment"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpapi.NotFound(w, r, "Payment not found")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		payment, err := completer.CompletePayment(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.NotFound(w, r, "Payment not found")
			return
		}
		if errors.Is(err, storage.ErrPaymentCompleted) {
			httpapi.BadRequest(w, r, "Payment already completed")
			return
		}
		if err != nil {
			log.Error("failed to complete payment", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, payment)
	}
}
