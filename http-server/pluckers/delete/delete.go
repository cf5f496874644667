package delete

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

type PluckerDeleter interface {
	DeletePlucker(ctx context.Context, id int64) error
}

func DeletePlucker(log *slog.Logger, deleter PluckerDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pluckers.delete.DeletePlucker"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpapi.NotFound(w, r, "Plucker not found")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = deleter.DeletePlucker(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.NotFound(w, r, "Plucker not found")
			return
		}
		if err != nil {
			log.Error("failed to delete plucker", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, map[string]string{"message": "Plucker removed"})
	}
}
