package handler

import (
	"time"

	"travel/internal/domain"
)

const timestampLayout = time.RFC3339

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt.Format(timestampLayout),
	}
}

// ListingResponse is the HTTP response for listing data.
type ListingResponse struct {
	ID            string `json:"id"`
	HostID        string `json:"host_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	PricePerNight string `json:"price_per_night"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func newListingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:            l.ID,
		HostID:        l.HostID,
		Title:         l.Title,
		Description:   l.Description,
		PricePerNight: l.PricePerNight.StringFixed(2),
		CreatedAt:     l.CreatedAt.Format(timestampLayout),
		UpdatedAt:     l.UpdatedAt.Format(timestampLayout),
	}
}

// BookingResponse is the HTTP response for booking data.
type BookingResponse struct {
	ID           string `json:"id"`
	ListingID    string `json:"listing_id"`
	UserID       string `json:"user_id"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	TotalPrice   string `json:"total_price"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

func newBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		ListingID:    b.ListingID,
		UserID:       b.UserID,
		CheckInDate:  b.CheckInDate.Format(domain.DateLayout),
		CheckOutDate: b.CheckOutDate.Format(domain.DateLayout),
		TotalPrice:   b.TotalPrice.StringFixed(2),
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.Format(timestampLayout),
	}
}

// PaymentResponse is the HTTP response for payment data.
type PaymentResponse struct {
	ID            string `json:"id"`
	BookingID     string `json:"booking_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Reference     string `json:"reference"`
	TransactionID string `json:"transaction_id,omitempty"`
	PaymentURL    string `json:"payment_url,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func newPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount.StringFixed(2),
		Currency:      p.Currency,
		Reference:     p.Reference,
		TransactionID: p.TransactionID,
		PaymentURL:    p.CheckoutURL,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt.Format(timestampLayout),
		UpdatedAt:     p.UpdatedAt.Format(timestampLayout),
	}
}
