package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FleetRecord is one revenue entry for a fleet on a given date. Records are
// created individually or via bulk import and are never updated in place.
// Amount may be negative (adjustments and refunds appear as negatives in the
// source data).
type FleetRecord struct {
	ID     uint            `json:"id" gorm:"primaryKey"`
	Date   time.Time       `json:"date" gorm:"type:date;not null;index"`
	Fleet  string          `json:"fleet" gorm:"size:100;not null;index"`
	Amount decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
}
