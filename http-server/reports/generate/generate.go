package generate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pluckandpay/internal/httpapi"
	"pluckandpay/internal/service/report"
)

type ReportGenerator interface {
	PluckerReport(ctx context.Context, start, end time.Time) (report.GeneratedFile, error)
	RecordsExcel(ctx context.Context, start, end time.Time) ([]byte, error)
}

// rangeFromQuery defaults to the current month when the caller omits
// either bound.
func rangeFromQuery(r *http.Request) (start, end time.Time, err error) {
	now := time.Now()
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end = now

	if s := r.URL.Query().Get("startDate"); s != "" {
		start, err = httpapi.ParseDate(s)
		if err != nil {
			return start, end, fmt.Errorf("invalid startDate")
		}
	}
	if s := r.URL.Query().Get("endDate"); s != "" {
		end, err = httpapi.ParseDate(s)
		if err != nil {
			return start, end, fmt.Errorf("invalid endDate")
		}
	}

	return start, end, nil
}

// PluckerReportPDF generates the plucker performance report and streams
// it back as a PDF attachment. The handler blocks until the file is
// fully written.
func PluckerReportPDF(log *slog.Logger, generator ReportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.generate.PluckerReportPDF"

		start, end, err := rangeFromQuery(r)
		if err != nil {
			httpapi.BadRequest(w, r, err.Error())
			return
		}

		// Report generation reads three collections; give it headroom.
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		file, err := generator.PluckerReport(ctx, start, end)
		if err != nil {
			log.Error("failed to generate plucker report", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename="+file.FileName)
		http.ServeFile(w, r, file.FilePath)
	}
}

// RecordsExcel exports collection records in range as a spreadsheet
// attachment.
func RecordsExcel(log *slog.Logger, generator ReportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.generate.RecordsExcel"

		start, end, err := rangeFromQuery(r)
		if err != nil {
			httpapi.BadRequest(w, r, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := generator.RecordsExcel(ctx, start, end)
		if err != nil {
			log.Error("failed to generate records excel", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		fileName := fmt.Sprintf("collection-records-%s.xlsx", time.Now().Format("2006-01-02_150405"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
