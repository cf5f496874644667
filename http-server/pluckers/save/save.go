package save

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

type PluckerSaver interface {
	CreatePlucker(ctx context.Context, p storage.Plucker) (storage.Plucker, error)
}

func SavePlucker(log *slog.Logger, saver PluckerSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pluckers.save.SavePlucker"

		var req struct {
			Name     string `json:"name"`
			Phone    string `json:"phone"`
			Address  string `json:"address"`
			JoinDate string `json:"joinDate"`
			Status   string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.BadRequest(w, r, "Invalid JSON")
			return
		}

		var errs []httpapi.FieldErr
		if req.Name == "" {
			errs = append(errs, httpapi.FieldErr{Field: "name", Message: "name is required"})
		}
		if req.Phone == "" {
			errs = append(errs, httpapi.FieldErr{Field: "phone", Message: "phone is required"})
		}

		joinDate := time.Now()
		if req.JoinDate != "" {
			t, err := httpapi.ParseDate(req.JoinDate)
			if err != nil {
				errs = append(errs, httpapi.FieldErr{Field: "joinDate", Message: "invalid date"})
			} else {
				joinDate = t
			}
		}

		status := req.Status
		if status == "" {
			status = storage.StatusActive
		}
		if status != storage.StatusActive && status != storage.StatusInactive {
			errs = append(errs, httpapi.FieldErr{Field: "status", Message: "status must be active or inactive"})
		}

		if len(errs) > 0 {
			httpapi.Validation(w, r, errs)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		plucker, err := saver.CreatePlucker(ctx, storage.Plucker{
			Name:     req.Name,
			Phone:    req.Phone,
			Address:  req.Address,
			JoinDate: joinDate,
			Status:   status,
		})
		if err != nil {
			log.Error("failed to save plucker", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, plucker)
	}
}
