package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pluckandpay/internal/storage"
)

func (s *Storage) CreatePayment(ctx context.Context, p storage.Payment) (storage.Payment, error) {
	const op = "storage.mysql.CreatePayment"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Payment{}, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (period, start_date, end_date, date, status, plucker_count, total_amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Period, p.StartDate, p.EndDate, p.Date, p.Status, p.PluckerCount, p.TotalAmount,
	)
	if err != nil {
		return storage.Payment{}, fmt.Errorf("%s: insert payment: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.Payment{}, fmt.Errorf("%s: last insert id: %w", op, err)
	}
	p.ID = id

	if err := insertPaymentDetails(ctx, tx, id, p.Details); err != nil {
		return storage.Payment{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return storage.Payment{}, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetPaymentByID(ctx, id)
}

func insertPaymentDetails(ctx context.Context, tx *sql.Tx, paymentID int64, details []storage.PaymentDetail) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO payment_details (payment_id, plucker_id, amount) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare details: %w", err)
	}
	defer stmt.Close()

	for _, d := range details {
		res, err := stmt.ExecContext(ctx, paymentID, d.PluckerID, d.Amount)
		if err != nil {
			return fmt.Errorf("insert detail plucker=%d: %w", d.PluckerID, err)
		}
		detailID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("detail insert id: %w", err)
		}
		for _, recID := range d.RecordIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO payment_detail_records (detail_id, record_id) VALUES (?, ?)`,
				detailID, recID,
			); err != nil {
				return fmt.Errorf("insert detail record ref record=%d: %w", recID, err)
			}
		}
	}

	return nil
}

func (s *Storage) GetPaymentByID(ctx context.Context, id int64) (storage.Payment, error) {
	const op = "storage.mysql.GetPaymentByID"

	var p storage.Payment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, period, start_date, end_date, date, status, plucker_count, total_amount
		 FROM payments WHERE id = ?`, id,
	).Scan(&p.ID, &p.Period, &p.StartDate, &p.EndDate, &p.Date, &p.Status, &p.PluckerCount, &p.TotalAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Payment{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Payment{}, fmt.Errorf("%s: %w", op, err)
	}

	details, err := s.paymentDetails(ctx, []int64{id})
	if err != nil {
		return storage.Payment{}, fmt.Errorf("%s: %w", op, err)
	}
	p.Details = details[id]

	return p, nil
}

func (s *Storage) ListPayments(ctx context.Context, filter storage.PaymentFilter) ([]storage.Payment, error) {
	const op = "storage.mysql.ListPayments"

	query := `SELECT id, period, start_date, end_date, date, status, plucker_count, total_amount
		 FROM payments`
	var conds []string
	var args []interface{}

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() {
		conds = append(conds, "date >= ? AND date <= ?")
		args = append(args, filter.StartDate, filter.EndDate)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC"

	payments, err := s.queryPayments(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payments, nil
}

func (s *Storage) GetPaymentsByPlucker(ctx context.Context, pluckerID int64) ([]storage.Payment, error) {
	const op = "storage.mysql.GetPaymentsByPlucker"

	payments, err := s.queryPayments(ctx,
		`SELECT DISTINCT p.id, p.period, p.start_date, p.end_date, p.date, p.status, p.plucker_count, p.total_amount
		 FROM payments p
		 JOIN payment_details pd ON pd.payment_id = p.id
		 WHERE pd.plucker_id = ?
		 ORDER BY p.date DESC`,
		pluckerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payments, nil
}

func (s *Storage) UpdatePayment(ctx context.Context, id int64, upd storage.PaymentUpdate) (storage.Payment, error) {
	const op = "storage.mysql.UpdatePayment"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Payment{}, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM payments WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Payment{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Payment{}, fmt.Errorf("%s: %w", op, err)
	}

	var sets []string
	var args []interface{}
	if upd.Period != nil {
		sets = append(sets, "period = ?")
		args = append(args, *upd.Period)
	}
	if upd.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *upd.StartDate)
	}
	if upd.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, *upd.EndDate)
	}
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *upd.Date)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.TotalAmount != nil {
		sets = append(sets, "total_amount = ?")
		args = append(args, *upd.TotalAmount)
	}
	if upd.Details != nil {
		// Replacing details also refreshes the stored plucker count.
		sets = append(sets, "plucker_count = ?")
		args = append(args, len(upd.Details))
	}

	if len(sets) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			`UPDATE payments SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
		); err != nil {
			return storage.Payment{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if upd.Details != nil {
		if err := deletePaymentDetails(ctx, tx, id); err != nil {
			return storage.Payment{}, fmt.Errorf("%s: %w", op, err)
		}
		if err := insertPaymentDetails(ctx, tx, id, upd.Details); err != nil {
			return storage.Payment{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storage.Payment{}, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetPaymentByID(ctx, id)
}

func deletePaymentDetails(ctx context.Context, tx *sql.Tx, paymentID int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE pdr FROM payment_detail_records pdr
		 JOIN payment_details pd ON pd.id = pdr.detail_id
		 WHERE pd.payment_id = ?`, paymentID,
	); err != nil {
		return fmt.Errorf("delete detail record refs: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM payment_details WHERE payment_id = ?`, paymentID,
	); err != nil {
		return fmt.Errorf("delete details: %w", err)
	}
	return nil
}

func (s *Storage) DeletePayment(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeletePayment"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if err := deletePaymentDetails(ctx, tx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// CompletePayment transitions a pending payment to completed. Completing
// an already-completed payment is a caller error, not a server error.
func (s *Storage) CompletePayment(ctx context.Context, id int64) (storage.Payment, error) {
	const op = "storage.mysql.CompletePayment"

	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM payments WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Payment{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Payment{}, fmt.Errorf("%s: %w", op, err)
	}

	if status == storage.PaymentCompleted {
		return storage.Payment{}, storage.ErrPaymentCompleted
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE payments SET status = ? WHERE id = ?`, storage.PaymentCompleted, id,
	); err != nil {
		return storage.Payment{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetPaymentByID(ctx, id)
}

func (s *Storage) queryPayments(ctx context.Context, query string, args ...interface{}) ([]storage.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []storage.Payment
	var ids []int64
	for rows.Next() {
		var p storage.Payment
		if err := rows.Scan(&p.ID, &p.Period, &p.StartDate, &p.EndDate, &p.Date, &p.Status, &p.PluckerCount, &p.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	details, err := s.paymentDetails(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		payments[i].Details = details[payments[i].ID]
	}

	return payments, nil
}

// paymentDetails populates detail lines for the given payments: plucker
// name and phone are joined in, and contributing records are loaded as
// full documents.
func (s *Storage) paymentDetails(ctx context.Context, paymentIDs []int64) (map[int64][]storage.PaymentDetail, error) {
	if len(paymentIDs) == 0 {
		return nil, nil
	}

	query := `SELECT pd.id, pd.payment_id, pd.plucker_id, COALESCE(p.name, ''), COALESCE(p.phone, ''), pd.amount
		 FROM payment_details pd
		 LEFT JOIN pluckers p ON p.id = pd.plucker_id
		 WHERE pd.payment_id IN (` + placeholders(len(paymentIDs)) + `)
		 ORDER BY pd.id ASC`

	args := make([]interface{}, len(paymentIDs))
	for i, id := range paymentIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load payment details: %w", err)
	}
	defer rows.Close()

	type detailRow struct {
		detailID  int64
		paymentID int64
		detail    storage.PaymentDetail
	}
	var detailRows []detailRow
	var detailIDs []int64
	for rows.Next() {
		var dr detailRow
		if err := rows.Scan(&dr.detailID, &dr.paymentID, &dr.detail.PluckerID,
			&dr.detail.PluckerName, &dr.detail.PluckerPhone, &dr.detail.Amount); err != nil {
			return nil, fmt.Errorf("scan payment detail: %w", err)
		}
		detailRows = append(detailRows, dr)
		detailIDs = append(detailIDs, dr.detailID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recordIDs, err := s.detailRecordIDs(ctx, detailIDs)
	if err != nil {
		return nil, err
	}

	// Collect every referenced record once, then hand full documents back
	// to each detail line.
	var allRecordIDs []int64
	seen := make(map[int64]bool)
	for _, ids := range recordIDs {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				allRecordIDs = append(allRecordIDs, id)
			}
		}
	}
	records, err := s.GetRecordsByIDs(ctx, allRecordIDs)
	if err != nil {
		return nil, err
	}
	recordByID := make(map[int64]storage.CollectionRecord, len(records))
	for _, r := range records {
		recordByID[r.ID] = r
	}

	details := make(map[int64][]storage.PaymentDetail)
	for _, dr := range detailRows {
		d := dr.detail
		d.RecordIDs = recordIDs[dr.detailID]
		for _, id := range d.RecordIDs {
			if rec, ok := recordByID[id]; ok {
				d.Records = append(d.Records, rec)
			}
		}
		details[dr.paymentID] = append(details[dr.paymentID], d)
	}

	return details, nil
}

func (s *Storage) detailRecordIDs(ctx context.Context, detailIDs []int64) (map[int64][]int64, error) {
	if len(detailIDs) == 0 {
		return nil, nil
	}

	query := `SELECT detail_id, record_id FROM payment_detail_records
		 WHERE detail_id IN (` + placeholders(len(detailIDs)) + `) ORDER BY record_id ASC`

	args := make([]interface{}, len(detailIDs))
	for i, id := range detailIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load detail record refs: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]int64)
	for rows.Next() {
		var detailID, recordID int64
		if err := rows.Scan(&detailID, &recordID); err != nil {
			return nil, fmt.Errorf("scan detail record ref: %w", err)
		}
		out[detailID] = append(out[detailID], recordID)
	}

	return out, rows.Err()
}
