package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing represents a bookable travel property.
type Listing struct {
	ID            string
	HostID        string
	Title         string
	Description   string
	PricePerNight decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
