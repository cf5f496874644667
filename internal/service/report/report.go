package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"pluckandpay/internal/storage"
)

type Storage interface {
	GetAllPluckers(ctx context.Context) ([]storage.Plucker, error)
	GetRecordsByDateRange(ctx context.Context, start, end time.Time) ([]storage.CollectionRecord, error)
	ListPayments(ctx context.Context, filter storage.PaymentFilter) ([]storage.Payment, error)
	CountActivePluckers(ctx context.Context) (int, error)
	CountActivePluckersJoinedBefore(ctx context.Context, t time.Time) (int, error)
}

type Service struct {
	storage   Storage
	uploadDir string
}

func NewService(storage Storage, uploadDir string) *Service {
	return &Service{storage: storage, uploadDir: uploadDir}
}

// GeneratedFile points at a report written to the upload directory.
type GeneratedFile struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	URL      string `json:"url"`
}

type pluckerRow struct {
	Name            string
	TotalCollection float64
	TotalEarnings   decimal.Decimal
	Status          string
}

// PluckerReport renders the plucker performance PDF for the inclusive
// date range and writes it into the upload directory. Any failed read
// aborts the whole report; no partial file is produced.
func (s *Service) PluckerReport(ctx context.Context, start, end time.Time) (GeneratedFile, error) {
	const op = "service.report.PluckerReport"

	var (
		pluckers []storage.Plucker
		records  []storage.CollectionRecord
		payments []storage.Payment
	)

	// Three independent reads; no snapshot isolation between them.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pluckers, err = s.storage.GetAllPluckers(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.storage.GetRecordsByDateRange(gCtx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.storage.ListPayments(gCtx, storage.PaymentFilter{StartDate: start, EndDate: end})
		return err
	})
	if err := g.Wait(); err != nil {
		return GeneratedFile{}, fmt.Errorf("%s: %w", op, err)
	}

	rows := buildPluckerRows(pluckers, records, payments)

	period := fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	pdfBytes, err := renderPluckerTable("Plucker Performance Report", period, rows)
	if err != nil {
		return GeneratedFile{}, fmt.Errorf("%s: render: %w", op, err)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return GeneratedFile{}, fmt.Errorf("%s: %w", op, err)
	}

	fileName := fmt.Sprintf("plucker-report-%d.pdf", time.Now().UnixMilli())
	filePath := filepath.Join(s.uploadDir, fileName)
	if err := os.WriteFile(filePath, pdfBytes, 0o644); err != nil {
		return GeneratedFile{}, fmt.Errorf("%s: write file: %w", op, err)
	}

	return GeneratedFile{
		FileName: fileName,
		FilePath: filePath,
		URL:      "/uploads/" + fileName,
	}, nil
}

// buildPluckerRows produces one row per plucker, activity or not. A
// plucker with nothing in range gets zero totals, not an omitted row.
func buildPluckerRows(pluckers []storage.Plucker, records []storage.CollectionRecord, payments []storage.Payment) []pluckerRow {
	rows := make([]pluckerRow, 0, len(pluckers))

	for _, plucker := range pluckers {
		var totalCollection float64
		for _, rec := range records {
			for _, line := range rec.Details {
				if line.PluckerID == plucker.ID {
					totalCollection += line.Weight
				}
			}
		}

		totalEarnings := decimal.Zero
		for _, pay := range payments {
			for _, line := range pay.Details {
				if line.PluckerID == plucker.ID {
					totalEarnings = totalEarnings.Add(line.Amount)
				}
			}
		}

		rows = append(rows, pluckerRow{
			Name:            plucker.Name,
			TotalCollection: totalCollection,
			TotalEarnings:   totalEarnings,
			Status:          plucker.Status,
		})
	}

	return rows
}
