package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// Payment represents one attempt to collect funds for a booking.
type Payment struct {
	ID            string
	BookingID     string
	Amount        decimal.Decimal
	Currency      string
	Reference     string // tx_ref sent to the gateway
	TransactionID string // assigned by the gateway on initiate
	CheckoutURL   string // assigned by the gateway on initiate
	Status        PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Initiated reports whether the gateway already registered this payment.
func (p *Payment) Initiated() bool {
	return p.TransactionID != "" && p.CheckoutURL != ""
}
