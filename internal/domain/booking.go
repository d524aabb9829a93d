package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// DateLayout is the wire format of check-in and check-out dates.
const DateLayout = "2006-01-02"

// Booking represents a reservation of a listing by a user for a date range.
type Booking struct {
	ID           string
	ListingID    string
	UserID       string
	CheckInDate  time.Time
	CheckOutDate time.Time
	TotalPrice   decimal.Decimal
	Status       BookingStatus
	CreatedAt    time.Time
}

// Nights returns the number of nights between check-in and check-out.
// Zero or negative means the date range is invalid.
func (b *Booking) Nights() int {
	return Nights(b.CheckInDate, b.CheckOutDate)
}

// Nights counts whole calendar days between two dates, ignoring time of day.
func Nights(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}

// TotalFor computes the price of staying the given number of nights.
func TotalFor(pricePerNight decimal.Decimal, nights int) decimal.Decimal {
	return pricePerNight.Mul(decimal.NewFromInt(int64(nights))).Round(2)
}
