package stats

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"pluckandpay/internal/httpapi"
	"pluckandpay/internal/service/report"
)

type StatsProvider interface {
	Dashboard(ctx context.Context, now time.Time) (report.DashboardStats, error)
}

func DashboardStats(log *slog.Logger, provider StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.stats.DashboardStats"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		dashboardStats, err := provider.Dashboard(ctx, time.Now())
		if err != nil {
			log.Error("failed to compute dashboard stats", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, dashboardStats)
	}
}
