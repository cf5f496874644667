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

	"pluckandpay/internal/httpapi"
	"pluckandpay/internal/storage"
)

type PluckerUpdater interface {
	UpdatePlucker(ctx context.Context, id int64, upd storage.PluckerUpdate) (storage.Plucker, error)
}

func UpdatePlucker(log *slog.Logger, updater PluckerUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pluckers.update.UpdatePlucker"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpapi.NotFound(w, r, "Plucker not found")
			return
		}

		var req struct {
			Name       *string  `json:"name"`
			Phone      *string  `json:"phone"`
			Address    *string  `json:"address"`
			JoinDate   *string  `json:"joinDate"`
			Status     *string  `json:"status"`
			Collection *float64 `json:"collection"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.BadRequest(w, r, "Invalid JSON")
			return
		}

		var errs []httpapi.FieldErr
		upd := storage.PluckerUpdate{
			Name:       req.Name,
			Phone:      req.Phone,
			Address:    req.Address,
			Status:     req.Status,
			Collection: req.Collection,
		}
		if req.JoinDate != nil {
			t, err := httpapi.ParseDate(*req.JoinDate)
			if err != nil {
				errs = append(errs, httpapi.FieldErr{Field: "joinDate", Message: "invalid date"})
			} else {
				upd.JoinDate = &t
			}
		}
		if req.Status != nil && *req.Status != storage.StatusActive && *req.Status != storage.StatusInactive {
			errs = append(errs, httpapi.FieldErr{Field: "status", Message: "status must be active or inactive"})
		}
		if req.Collection != nil && *req.Collection < 0 {
			errs = append(errs, httpapi.FieldErr{Field: "collection", Message: "collection cannot be negative"})
		}
		if len(errs) > 0 {
			httpapi.Validation(w, r, errs)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		plucker, err := updater.UpdatePlucker(ctx, id, upd)
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.NotFound(w, r, "Plucker not found")
			return
		}
		if err != nil {
			log.Error("failed to update plucker", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, plucker)
	}
}
