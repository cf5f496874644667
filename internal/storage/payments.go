package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentCancelled = "cancelled"
)

type Payment struct {
	ID           int64           `json:"id"`
	Period       string          `json:"period"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	Date         time.Time       `json:"date"`
	Status       string          `json:"status"`
	PluckerCount int             `json:"pluckerCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Details      []PaymentDetail `json:"details"`
}

// PaymentDetail references its plucker and contributing records by id.
// PluckerName, PluckerPhone and Records are populated at read time.
type PaymentDetail struct {
	PluckerID    int64              `json:"pluckerId"`
	PluckerName  string             `json:"pluckerName,omitempty"`
	PluckerPhone string             `json:"pluckerPhone,omitempty"`
	Amount       decimal.Decimal    `json:"amount"`
	RecordIDs    []int64            `json:"recordIds"`
	Records      []CollectionRecord `json:"records,omitempty"`
}

type PaymentUpdate struct {
	Period      *string          `json:"period"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
	Date        *time.Time       `json:"date"`
	Status      *string          `json:"status"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`
	Details     []PaymentDetail  `json:"details"`
}

// PaymentFilter narrows ListPayments. Zero values mean "no filter".
type PaymentFilter struct {
	Status    string
	StartDate time.Time
	EndDate   time.Time
}
