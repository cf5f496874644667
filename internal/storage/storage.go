package storage

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPaymentCompleted = errors.New("payment already completed")
	ErrEmailTaken       = errors.New("email already registered")
)
