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

func (s *Storage) CreatePlucker(ctx context.Context, p storage.Plucker) (storage.Plucker, error) {
	const op = "storage.mysql.CreatePlucker"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pluckers (name, phone, address, join_date, status, collection)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Phone, p.Address, p.JoinDate, p.Status, p.Collection,
	)
	if err != nil {
		return storage.Plucker{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.Plucker{}, fmt.Errorf("%s: last insert id: %w", op, err)
	}
	p.ID = id

	return p, nil
}

func (s *Storage) GetPluckerByID(ctx context.Context, id int64) (storage.Plucker, error) {
	const op = "storage.mysql.GetPluckerByID"

	var p storage.Plucker
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, address, join_date, status, collection
		 FROM pluckers WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Phone, &p.Address, &p.JoinDate, &p.Status, &p.Collection)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Plucker{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Plucker{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Storage) GetAllPluckers(ctx context.Context) ([]storage.Plucker, error) {
	const op = "storage.mysql.GetAllPluckers"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, address, join_date, status, collection
		 FROM pluckers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var pluckers []storage.Plucker
	for rows.Next() {
		var p storage.Plucker
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Address, &p.JoinDate, &p.Status, &p.Collection); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		pluckers = append(pluckers, p)
	}

	return pluckers, rows.Err()
}

func (s *Storage) GetTopPluckers(ctx context.Context, limit int) ([]storage.Plucker, error) {
	const op = "storage.mysql.GetTopPluckers"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, address, join_date, status, collection
		 FROM pluckers WHERE status = ? ORDER BY collection DESC LIMIT ?`,
		storage.StatusActive, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var pluckers []storage.Plucker
	for rows.Next() {
		var p storage.Plucker
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Address, &p.JoinDate, &p.Status, &p.Collection); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		pluckers = append(pluckers, p)
	}

	return pluckers, rows.Err()
}

func (s *Storage) UpdatePlucker(ctx context.Context, id int64, upd storage.PluckerUpdate) (storage.Plucker, error) {
	const op = "storage.mysql.UpdatePlucker"

	query := `UPDATE pluckers SET `
	var sets []string
	var args []interface{}

	appendSet := func(col string, val interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if upd.Name != nil {
		appendSet("name", *upd.Name)
	}
	if upd.Phone != nil {
		appendSet("phone", *upd.Phone)
	}
	if upd.Address != nil {
		appendSet("address", *upd.Address)
	}
	if upd.JoinDate != nil {
		appendSet("join_date", *upd.JoinDate)
	}
	if upd.Status != nil {
		appendSet("status", *upd.Status)
	}
	if upd.Collection != nil {
		appendSet("collection", *upd.Collection)
	}

	if len(sets) > 0 {
		query += strings.Join(sets, ", ") + ` WHERE id = ?`
		args = append(args, id)

		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return storage.Plucker{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return s.GetPluckerByID(ctx, id)
}

func (s *Storage) DeletePlucker(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeletePlucker"

	res, err := s.db.ExecContext(ctx, `DELETE FROM pluckers WHERE id = ?`, id)
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

	return nil
}

func (s *Storage) CountActivePluckers(ctx context.Context) (int, error) {
	const op = "storage.mysql.CountActivePluckers"

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pluckers WHERE status = ?`, storage.StatusActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (s *Storage) CountActivePluckersJoinedBefore(ctx context.Context, t time.Time) (int, error) {
	const op = "storage.mysql.CountActivePluckersJoinedBefore"

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pluckers WHERE status = ? AND join_date < ?`,
		storage.StatusActive, t,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
