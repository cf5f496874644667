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

type RecordSaver interface {
	CreateRecord(ctx context.Context, rec storage.CollectionRecord) (storage.CollectionRecord, error)
}

type detailRequest struct {
	PluckerID int64   `json:"pluckerId"`
	Weight    float64 `json:"weight"`
}

// SaveRecord stores a collection record. The storage layer rolls each
// detail line's weight into its plucker's running total in the same
// transaction.
func SaveRecord(log *slog.Logger, saver RecordSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.records.save.SaveRecord"

		var req struct {
			Date           string          `json:"date"`
			TotalWeight    float64         `json:"totalWeight"`
			PluckerCount   int             `json:"pluckerCount"`
			AveragePrice   decimal.Decimal `json:"averagePrice"`
			PluckerDetails []detailRequest `json:"pluckerDetails"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.BadRequest(w, r, "Invalid JSON")
			return
		}

		var errs []httpapi.FieldErr
		var date time.Time
		if req.Date == "" {
			errs = append(errs, httpapi.FieldErr{Field: "date", Message: "date is required"})
		} else {
			t, err := httpapi.ParseDate(req.Date)
			if err != nil {
				errs = append(errs, httpapi.FieldErr{Field: "date", Message: "invalid date"})
			} else {
				date = t
			}
		}
		if req.TotalWeight <= 0 {
			errs = append(errs, httpapi.FieldErr{Field: "totalWeight", Message: "totalWeight must be positive"})
		}
		if req.PluckerCount <= 0 {
			errs = append(errs, httpapi.FieldErr{Field: "pluckerCount", Message: "pluckerCount must be positive"})
		}
		if req.AveragePrice.IsNegative() || req.AveragePrice.IsZero() {
			errs = append(errs, httpapi.FieldErr{Field: "averagePrice", Message: "averagePrice must be positive"})
		}
		if len(req.PluckerDetails) == 0 {
			errs = append(errs, httpapi.FieldErr{Field: "pluckerDetails", Message: "at least one detail line is required"})
		}
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
		}
		if len(errs) > 0 {
			httpapi.Validation(w, r, errs)
			return
		}

		details := make([]storage.RecordDetail, 0, len(req.PluckerDetails))
		for _, d := range req.PluckerDetails {
			details = append(details, storage.RecordDetail{PluckerID: d.PluckerID, Weight: d.Weight})
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		record, err := saver.CreateRecord(ctx, storage.CollectionRecord{
			Date:         date,
			TotalWeight:  req.TotalWeight,
			PluckerCount: req.PluckerCount,
			AveragePrice: req.AveragePrice,
			Details:      details,
		})
		if err != nil {
			log.Error("failed to save record", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, record)
	}
}
