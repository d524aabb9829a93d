package gateway

import (
	"fmt"
	"net/http"
	"net/url"

	"travel/internal/domain"
)

// InitiateInput carries the records an initiate request is built from.
type InitiateInput struct {
	Payment      *domain.Payment
	Booking      *domain.Booking
	Payer        *domain.User
	ListingTitle string
}

// InitializePayload is the JSON body of POST /transaction/initialize.
type InitializePayload struct {
	Amount                   string `json:"amount"`
	Currency                 string `json:"currency"`
	Email                    string `json:"email"`
	FirstName                string `json:"first_name"`
	LastName                 string `json:"last_name"`
	TxRef                    string `json:"tx_ref"`
	CallbackURL              string `json:"callback_url"`
	ReturnURL                string `json:"return_url"`
	CustomizationTitle       string `json:"customization[title]"`
	CustomizationDescription string `json:"customization[description]"`
}

// Request is a gateway call ready to be sent.
type Request struct {
	Method  string
	URL     string
	Payload *InitializePayload
	Headers http.Header
}

func (c *Client) headers() http.Header {
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	h.Set("Content-Type", "application/json")
	return h
}

// BuildInitiateRequest builds the initialize call for a payment. baseURL is
// the public address of this API and anchors the callback and return URLs.
func (c *Client) BuildInitiateRequest(in InitiateInput, baseURL string) *Request {
	payment, booking := in.Payment, in.Booking

	payload := &InitializePayload{
		Amount:                   payment.Amount.StringFixed(2),
		Currency:                 payment.Currency,
		TxRef:                    payment.Reference,
		CallbackURL:              fmt.Sprintf("%s/api/payments/%s/verify_payment/", baseURL, payment.ID),
		ReturnURL:                fmt.Sprintf("%s/bookings/%s/", baseURL, booking.ID),
		CustomizationTitle:       "Booking Payment for " + in.ListingTitle,
		CustomizationDescription: fmt.Sprintf("Payment for booking from %s to %s", booking.CheckInDate.Format(domain.DateLayout), booking.CheckOutDate.Format(domain.DateLayout)),
	}
	if in.Payer != nil {
		payload.Email = in.Payer.Email
		payload.FirstName = in.Payer.FirstName
		payload.LastName = in.Payer.LastName
	}

	return &Request{
		Method:  http.MethodPost,
		URL:     c.cfg.BaseURL + "/transaction/initialize",
		Payload: payload,
		Headers: c.headers(),
	}
}

// BuildVerifyRequest builds the lookup call for an initiated payment.
func (c *Client) BuildVerifyRequest(payment *domain.Payment) *Request {
	return &Request{
		Method:  http.MethodGet,
		URL:     c.cfg.BaseURL + "/transaction/verify/" + url.PathEscape(payment.TransactionID),
		Headers: c.headers(),
	}
}
