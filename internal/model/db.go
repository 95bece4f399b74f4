package model

import "time"

// FinalizedOrder is the local audit row written after a successful finalize.
// The authoritative order lives in Shopify; this table exists for operator
// lookups (which transaction paid for which order) without a Shopify query.
type FinalizedOrder struct {
	OrderID         string `gorm:"primaryKey;size:128;not null"` // shopify order gid
	OrderName       string `gorm:"size:64;index"`
	TransactionHash string `gorm:"size:80;uniqueIndex;not null"`
	Amount          string `gorm:"size:32;not null"`
	Currency        string `gorm:"size:8;not null"`
	CustomerEmail   string `gorm:"size:255;index"`
	CreatedAt       time.Time
}
