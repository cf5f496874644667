package storage

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Plucker struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	JoinDate   time.Time `json:"joinDate"`
	Status     string    `json:"status"`
	Collection float64   `json:"collection"`
}

// PluckerUpdate carries the fields an update may overwrite. Nil means
// "leave unchanged". Collection is overwritable directly, matching the
// running-total maintenance done by the record store.
type PluckerUpdate struct {
	Name       *string    `json:"name"`
	Phone      *string    `json:"phone"`
	Address    *string    `json:"address"`
	JoinDate   *time.Time `json:"joinDate"`
	Status     *string    `json:"status"`
	Collection *float64   `json:"collection"`
}
