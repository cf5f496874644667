package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"pluckandpay/internal/config"
)

type Storage struct {
	db *sql.DB
}

func New(cfg config.Config) (*Storage, error) {
	const op = "storage.mysql.New"

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	s := &Storage{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate(ctx context.Context) error {
	const op = "storage.mysql.migrate"

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL DEFAULT 'manager',
			phone VARCHAR(64) NOT NULL DEFAULT '',
			location VARCHAR(255) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS pluckers (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			phone VARCHAR(64) NOT NULL DEFAULT '',
			address VARCHAR(255) NOT NULL DEFAULT '',
			join_date DATETIME NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'active',
			collection DOUBLE NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			date DATETIME NOT NULL,
			total_weight DOUBLE NOT NULL,
			plucker_count INT NOT NULL,
			average_price DECIMAL(12,2) NOT NULL,
			INDEX idx_records_date (date)
		)`,
		`CREATE TABLE IF NOT EXISTS record_details (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			record_id BIGINT NOT NULL,
			plucker_id BIGINT NOT NULL,
			weight DOUBLE NOT NULL,
			INDEX idx_record_details_record (record_id),
			INDEX idx_record_details_plucker (plucker_id)
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			period VARCHAR(64) NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			date DATETIME NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			plucker_count INT NOT NULL,
			total_amount DECIMAL(14,2) NOT NULL,
			INDEX idx_payments_date (date)
		)`,
		`CREATE TABLE IF NOT EXISTS payment_details (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			payment_id BIGINT NOT NULL,
			plucker_id BIGINT NOT NULL,
			amount DECIMAL(14,2) NOT NULL,
			INDEX idx_payment_details_payment (payment_id),
			INDEX idx_payment_details_plucker (plucker_id)
		)`,
		`CREATE TABLE IF NOT EXISTS payment_detail_records (
			detail_id BIGINT NOT NULL,
			record_id BIGINT NOT NULL,
			PRIMARY KEY (detail_id, record_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// placeholders returns "?, ?, ?" for IN (...) lists.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
