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

type PluckerProvider interface {
	GetAllPluckers(ctx context.Context) ([]storage.Plucker, error)
	GetPluckerByID(ctx context.Context, id int64) (storage.Plucker, error)
	GetTopPluckers(ctx context.Context, limit int) ([]storage.Plucker, error)
}

func GetPluckers(log *slog.Logger, provider PluckerProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pluckers.get.GetPluckers"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		pluckers, err := provider.GetAllPluckers(ctx)
		if err != nil {
			log.Error("failed to list pluckers", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, pluckers)
	}
}

func GetPlucker(log *slog.Logger, provider PluckerProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pluckers.get.GetPlucker"

		// A malformed id is indistinguishable from an unknown one.
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpapi.NotFound(w, r, "Plucker not found")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		plucker, err := provider.GetPluckerByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.NotFound(w, r, "Plucker not found")
			return
		}
		if err != nil {
			log.Error("failed to get plucker", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, plucker)
	}
}

func GetTopPluckers(log *slog.Logger, provider PluckerProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pluckers.get.GetTopPluckers"

		limit := 5
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				httpapi.BadRequest(w, r, "invalid limit")
				return
			}
			limit = n
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		pluckers, err := provider.GetTopPluckers(ctx, limit)
		if err != nil {
			log.Error("failed to get top pluckers", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, pluckers)
	}
}
