package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pluckandpay/internal/storage"
)

func (s *Storage) CreateRecord(ctx context.Context, rec storage.CollectionRecord) (storage.CollectionRecord, error) {
	const op = "storage.mysql.CreateRecord"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.CollectionRecord{}, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO records (date, total_weight, plucker_count, average_price)
		 VALUES (?, ?, ?, ?)`,
		rec.Date, rec.TotalWeight, rec.PluckerCount, rec.AveragePrice,
	)
	if err != nil {
		return storage.CollectionRecord{}, fmt.Errorf("%s: insert record: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.CollectionRecord{}, fmt.Errorf("%s: last insert id: %w", op, err)
	}
	rec.ID = id

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO record_details (record_id, plucker_id, weight) VALUES (?, ?, ?)`)
	if err != nil {
		return storage.CollectionRecord{}, fmt.Errorf("%s: prepare details: %w", op, err)
	}
	defer stmt.Close()

	for _, d := range rec.Details {
		if _, err := stmt.ExecContext(ctx, id, d.PluckerID, d.Weight); err != nil {
			return storage.CollectionRecord{}, fmt.Errorf("%s: insert detail plucker=%d: %w", op, d.PluckerID, err)
		}
		// Running total maintenance, same transaction as the record insert.
		if _, err := tx.ExecContext(ctx,
			`UPDATE pluckers SET collection = collection + ? WHERE id = ?`,
			d.Weight, d.PluckerID,
		); err != nil {
			return storage.CollectionRecord{}, fmt.Errorf("%s: increment collection plucker=%d: %w", op, d.PluckerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storage.CollectionRecord{}, fmt.Errorf("%s: commit: %w", op, err)
	}

	return rec, nil
}

func (s *Storage) GetRecordByID(ctx context.Context, id int64) (storage.CollectionRecord, error) {
	const op = "storage.mysql.GetRecordByID"

	var rec storage.CollectionRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, date, total_weight, plucker_count, average_price
		 FROM records WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Date, &rec.TotalWeight, &rec.PluckerCount, &rec.AveragePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CollectionRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CollectionRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	details, err := s.recordDetails(ctx, []int64{id})
	if err != nil {
		return storage.CollectionRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	rec.Details = details[id]

	return rec, nil
}

func (s *Storage) GetAllRecords(ctx context.Context) ([]storage.CollectionRecord, error) {
	const op = "storage.mysql.GetAllRecords"

	recs, err := s.queryRecords(ctx,
		`SELECT id, date, total_weight, plucker_count, average_price
		 FROM records ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return recs, nil
}

// GetRecordsByDateRange returns records whose date falls within the
// inclusive [start, end] range, oldest first.
func (s *Storage) GetRecordsByDateRange(ctx context.Context, start, end time.Time) ([]storage.CollectionRecord, error) {
	const op = "storage.mysql.GetRecordsByDateRange"

	recs, err := s.queryRecords(ctx,
		`SELECT id, date, total_weight, plucker_count, average_price
		 FROM records WHERE date >= ? AND date <= ? ORDER BY date ASC`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return recs, nil
}

func (s *Storage) GetRecordsByIDs(ctx context.Context, ids []int64) ([]storage.CollectionRecord, error) {
	const op = "storage.mysql.GetRecordsByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, date, total_weight, plucker_count, average_price
		 FROM records WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY date ASC`

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	recs, err := s.queryRecords(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return recs, nil
}

func (s *Storage) UpdateRecord(ctx context.Context, id int64, upd storage.RecordUpdate) (storage.CollectionRecord, error) {
	const op = "storage.mysql.UpdateRecord"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.CollectionRecord{}, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM records WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CollectionRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CollectionRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	var sets []string
	var args []interface{}
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *upd.Date)
	}
	if upd.TotalWeight != nil {
		sets = append(sets, "total_weight = ?")
		args = append(args, *upd.TotalWeight)
	}
	if upd.PluckerCount != nil {
		sets = append(sets, "plucker_count = ?")
		args = append(args, *upd.PluckerCount)
	}
	if upd.AveragePrice != nil {
		sets = append(sets, "average_price = ?")
		args = append(args, *upd.AveragePrice)
	}

	if len(sets) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			`UPDATE records SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
		); err != nil {
			return storage.CollectionRecord{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	// Replacing detail lines rolls the old weights out of the plucker
	// running totals and the new ones in.
	if upd.Details != nil {
		rows, err := tx.QueryContext(ctx,
			`SELECT plucker_id, weight FROM record_details WHERE record_id = ?`, id)
		if err != nil {
			return storage.CollectionRecord{}, fmt.Errorf("%s: load old details: %w", op, err)
		}
		var old []storage.RecordDetail
		for rows.Next() {
			var d storage.RecordDetail
			if err := rows.Scan(&d.PluckerID, &d.Weight); err != nil {
				rows.Close()
				return storage.CollectionRecord{}, fmt.Errorf("%s: scan old detail: %w", op, err)
			}
			old = append(old, d)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return storage.CollectionRecord{}, fmt.Errorf("%s: %w", op, err)
		}

		for _, d := range old {
			if _, err := tx.ExecContext(ctx,
				`UPDATE pluckers SET collection = GREATEST(0, collection - ?) WHERE id = ?`,
				d.Weight, d.PluckerID,
			); err != nil {
				return storage.CollectionRecord{}, fmt.Errorf("%s: decrement collection plucker=%d: %w", op, d.PluckerID, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM record_details WHERE record_id = ?`, id,
		); err != nil {
			return storage.CollectionRecord{}, fmt.Errorf("%s: delete old details: %w", op, err)
		}

		for _, d := range upd.Details {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO record_details (record_id, plucker_id, weight) VALUES (?, ?, ?)`,
				id, d.PluckerID, d.Weight,
			); err != nil {
				return storage.CollectionRecord{}, fmt.Errorf("%s: insert detail plucker=%d: %w", op, d.PluckerID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE pluckers SET collection = collection + ? WHERE id = ?`,
				d.Weight, d.PluckerID,
			); err != nil {
				return storage.CollectionRecord{}, fmt.Errorf("%s: increment collection plucker=%d: %w", op, d.PluckerID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storage.CollectionRecord{}, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetRecordByID(ctx, id)
}

func (s *Storage) DeleteRecord(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteRecord"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT plucker_id, weight FROM record_details WHERE record_id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: load details: %w", op, err)
	}
	var details []storage.RecordDetail
	for rows.Next() {
		var d storage.RecordDetail
		if err := rows.Scan(&d.PluckerID, &d.Weight); err != nil {
			rows.Close()
			return fmt.Errorf("%s: scan detail: %w", op, err)
		}
		details = append(details, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Roll the record's contribution back out of each plucker's running
	// total, floored at zero.
	for _, d := range details {
		if _, err := tx.ExecContext(ctx,
			`UPDATE pluckers SET collection = GREATEST(0, collection - ?) WHERE id = ?`,
			d.Weight, d.PluckerID,
		); err != nil {
			return fmt.Errorf("%s: decrement collection plucker=%d: %w", op, d.PluckerID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_details WHERE record_id = ?`, id); err != nil {
		return fmt.Errorf("%s: delete details: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: delete record: %w", op, err)
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

func (s *Storage) queryRecords(ctx context.Context, query string, args ...interface{}) ([]storage.CollectionRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []storage.CollectionRecord
	var ids []int64
	for rows.Next() {
		var rec storage.CollectionRecord
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.TotalWeight, &rec.PluckerCount, &rec.AveragePrice); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, rec)
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	details, err := s.recordDetails(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Details = details[recs[i].ID]
	}

	return recs, nil
}

// recordDetails loads detail lines for the given records in one query,
// with plucker names resolved.
func (s *Storage) recordDetails(ctx context.Context, recordIDs []int64) (map[int64][]storage.RecordDetail, error) {
	if len(recordIDs) == 0 {
		return nil, nil
	}

	query := `SELECT rd.record_id, rd.plucker_id, COALESCE(p.name, ''), rd.weight
		 FROM record_details rd
		 LEFT JOIN pluckers p ON p.id = rd.plucker_id
		 WHERE rd.record_id IN (` + placeholders(len(recordIDs)) + `)
		 ORDER BY rd.id ASC`

	args := make([]interface{}, len(recordIDs))
	for i, id := range recordIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load record details: %w", err)
	}
	defer rows.Close()

	details := make(map[int64][]storage.RecordDetail)
	for rows.Next() {
		var recordID int64
		var d storage.RecordDetail
		if err := rows.Scan(&recordID, &d.PluckerID, &d.PluckerName, &d.Weight); err != nil {
			return nil, fmt.Errorf("scan record detail: %w", err)
		}
		details[recordID] = append(details[recordID], d)
	}

	return details, rows.Err()
}
