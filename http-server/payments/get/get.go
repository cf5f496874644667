package get

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

type PaymentProvider interface {
	ListPayments(ctx context.Context, filter storage.PaymentFilter) ([]storage.Payment, error)
	GetPaymentByID(ctx context.Context, id int64) (storage.Payment, error)
	GetPaymentsByPlucker(ctx context.Context, pluckerID int64) ([]storage.Payment, error)
}

func GetPayments(log *slog.Logger, provider PaymentProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payments.get.GetPayments"

		var filter storage.PaymentFilter
		filter.Status = r.URL.Query().Get("status")

		startStr := r.URL.Query().Get("startDate")
		endStr := r.URL.Query().Get("endDate")
		if startStr != "" && endStr != "" {
			start, err := httpapi.ParseDate(startStr)
			if err != nil {
				httpapi.BadRequest(w, r, "invalid startDate")
				return
			}
			end, err := httpapi.ParseDate(endStr)
			if err != nil {
				httpapi.BadRequest(w, r, "invalid endDate")
				return
			}
			filter.StartDate = start
			filter.EndDate = end
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		payments, err := provider.ListPayments(ctx, filter)
		if err != nil {
			log.Error("failed to list payments", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, payments)
	}
}

func GetPayment(log *slog.Logger, provider PaymentProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payments.get.GetPayment"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpapi.NotFound(w, r, "Payment not found")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		payment, err := provider.GetPaymentByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.NotFound(w, r, "Payment not found")
			return
		}
		if err != nil {
			log.Error("failed to get payment", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, payment)
	}
}

func GetPaymentsByPlucker(log *slog.Logger, provider PaymentProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payments.get.GetPaymentsByPlucker"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpapi.NotFound(w, r, "Plucker not found")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		payments, err := provider.GetPaymentsByPlucker(ctx, id)
		if err != nil {
			log.Error("failed to get payments by plucker", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, payments)
	}
}
