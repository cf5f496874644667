package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionRecord is one day's collection event, broken down per plucker.
// TotalWeight and PluckerCount are supplied by the caller and are not
// revalidated against the detail lines.
type CollectionRecord struct {
	ID           int64           `json:"id"`
	Date         time.Time       `json:"date"`
	TotalWeight  float64         `json:"totalWeight"`
	PluckerCount int             `json:"pluckerCount"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	Details      []RecordDetail  `json:"pluckerDetails"`
}

type RecordDetail struct {
	PluckerID   int64   `json:"pluckerId"`
	PluckerName string  `json:"pluckerName,omitempty"`
	Weight      float64 `json:"weight"`
}

type RecordUpdate struct {
	Date         *time.Time       `json:"date"`
	TotalWeight  *float64         `json:"totalWeight"`
	PluckerCount *int             `json:"pluckerCount"`
	AveragePrice *decimal.Decimal `json:"averagePrice"`
	Details      []RecordDetail   `json:"pluckerDetails"`
}
