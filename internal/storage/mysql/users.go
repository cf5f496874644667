package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pluckandpay/internal/storage"
)

func (s *Storage) CreateUser(ctx context.Context, u storage.User) (storage.User, error) {
	const op = "storage.mysql.CreateUser"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, phone, location, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Phone, u.Location, u.CreatedAt,
	)
	if err != nil {
		return storage.User{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.User{}, fmt.Errorf("%s: last insert id: %w", op, err)
	}
	u.ID = id

	return u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (storage.User, error) {
	const op = "storage.mysql.GetUserByEmail"

	var u storage.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, phone, location, created_at
		 FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.Location, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (storage.User, error) {
	const op = "storage.mysql.GetUserByID"

	var u storage.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, phone, location, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.Location, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id int64, upd storage.UserUpdate) (storage.User, error) {
	const op = "storage.mysql.UpdateUser"

	var sets []string
	var args []interface{}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *upd.Phone)
	}
	if upd.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *upd.Location)
	}

	if len(sets) > 0 {
		args = append(args, id)
		if _, err := s.db.ExecContext(ctx,
			`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
		); err != nil {
			return storage.User{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return s.GetUserByID(ctx, id)
}
