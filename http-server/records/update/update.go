package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

type RecordUpdater interface {
	UpdateRecord(ctx context.Context, id int64, upd storage.RecordUpdate) (storage.CollectionRecord, error)
}

// UpdateRecord applies a partial update. Supplying pluckerDetails
// replaces the lines and recomputes the affected pluckers' running
// totals.
func UpdateRecord(log *slog.Logger, updater RecordUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.records.update.UpdateRecord"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpapi.NotFound(w, r, "Record not found")
			return
		}

		var req struct {
			Date           *string          `json:"date"`
			TotalWeight    *float64         `json:"totalWeight"`
			PluckerCount   *int             `json:"pluckerCount"`
			AveragePrice   *decimal.Decimal `json:"averagePrice"`
			PluckerDetails []struct {
				PluckerID int64   `json:"pluckerId"`
				Weight    float64 `json:"weight"`
			} `json:"pluckerDetails"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.BadRequest(w, r, "Invalid JSON")
			return
		}

		var errs []httpapi.FieldErr
		upd := storage.RecordUpdate{
			TotalWeight:  req.TotalWeight,
			PluckerCount: req.PluckerCount,
			AveragePrice: req.AveragePrice,
		}
		if req.Date != nil {
			t, err := httpapi.ParseDate(*req.Date)
			if err != nil {
				errs = append(errs, httpapi.FieldErr{Field: "date", Message: "invalid date"})
			} else {
				upd.Date = &t
			}
		}
		if req.PluckerDetails != nil {
			upd.Details = make([]storage.RecordDetail, 0, len(req.PluckerDetails))
			for i, d := range req.PluckerDetails {
				if d.PluckerID == 0 {
					errs = append(errs, httpapi.FieldErr{
						Field:   fmt.Sprintf("pluckerDetails[%d].pluckerId", i),
						Message: "pluckerId is required",
					})
				}
				if d.Weight <= 0 {
					errs = append(errs, httpapi.FieldErr{
						Field:   fmt.Sprintf("pluckerDetails[%d].weight", i),
						Message: "weight must be positive",
					})
				}
				upd.Details = append(upd.Details, storage.RecordDetail{PluckerID: d.PluckerID, Weight: d.Weight})
			}
		}
		if len(errs) > 0 {
			httpapi.Validation(w, r, errs)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		record, err := updater.UpdateRecord(ctx, id, upd)
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.NotFound(w, r, "Record not found")
			return
		}
		if err != nil {
			log.Error("failed to update record", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, record)
	}
}
