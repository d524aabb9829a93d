package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel/internal/domain"
)

func testInput() InitiateInput {
	return InitiateInput{
		Payment: &domain.Payment{
			ID:        "pay-1",
			BookingID: "booking-1",
			Amount:    decimal.RequireFromString("400"),
			Currency:  "ETB",
			Reference: "ref-1",
			Status:    domain.PaymentStatusPending,
		},
		Booking: &domain.Booking{
			ID:           "booking-1",
			CheckInDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			CheckOutDate: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		},
		Payer:        &domain.User{Email: "guest@example.com", FirstName: "Abebe", LastName: "Kebede"},
		ListingTitle: "Lakeside cabin",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, SecretKey: "sk-test", Timeout: 2 * time.Second}, zap.NewNop())
}

func TestBuildInitiateRequest(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://gateway.example/v1", SecretKey: "sk-test"}, zap.NewNop())

	req := client.BuildInitiateRequest(testInput(), "https://travel.example")

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://gateway.example/v1/transaction/initialize", req.URL)
	assert.Equal(t, "Bearer sk-test", req.Headers.Get("Authorization"))
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))

	p := req.Payload
	assert.Equal(t, "400.00", p.Amount)
	assert.Equal(t, "ETB", p.Currency)
	assert.Equal(t, "guest@example.com", p.Email)
	assert.Equal(t, "Abebe", p.FirstName)
	assert.Equal(t, "Kebede", p.LastName)
	assert.Equal(t, "ref-1", p.TxRef)
	assert.Equal(t, "https://travel.example/api/payments/pay-1/verify_payment/", p.CallbackURL)
	assert.Equal(t, "https://travel.example/bookings/booking-1/", p.ReturnURL)
	assert.Equal(t, "Booking Payment for Lakeside cabin", p.CustomizationTitle)
	assert.Equal(t, "Payment for booking from 2024-06-01 to 2024-06-05", p.CustomizationDescription)

	encoded, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"customization[title]":"Booking Payment for Lakeside cabin"`)
}

func TestBuildVerifyRequest(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://gateway.example/v1", SecretKey: "sk-test"}, zap.NewNop())

	req := client.BuildVerifyRequest(&domain.Payment{TransactionID: "tx_123"})

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "https://gateway.example/v1/transaction/verify/tx_123", req.URL)
	assert.Nil(t, req.Payload)
	assert.Equal(t, "Bearer sk-test", req.Headers.Get("Authorization"))
}

func TestInitialize_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ref-1", body["tx_ref"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":{"transaction_id":"tx_123","checkout_url":"https://pay.example/tx_123"}}`))
	})

	result, err := client.Initialize(context.Background(), testInput(), "https://travel.example")

	require.NoError(t, err)
	assert.Equal(t, "tx_123", result.TransactionID)
	assert.Equal(t, "https://pay.example/tx_123", result.CheckoutURL)
}

func TestInitialize_BusinessFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"failed","message":"Invalid currency","data":null}`))
	})

	_, err := client.Initialize(context.Background(), testInput(), "https://travel.example")

	var be *BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusBadRequest, be.StatusCode)
	assert.Equal(t, "failed", be.Status)
	assert.JSONEq(t, `{"status":"failed","message":"Invalid currency","data":null}`, string(be.Details))
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestInitialize_SuccessStatusCodeButFailedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"failed"}`))
	})

	_, err := client.Initialize(context.Background(), testInput(), "https://travel.example")

	assert.True(t, IsBusinessError(err))
}

func TestVerify_Outcomes(t *testing.T) {
	testCases := []struct {
		name            string
		statusCode      int
		body            string
		wantUnavailable bool
		wantBusiness    bool
	}{
		{"success", http.StatusOK, `{"status":"success","data":{"status":"success"}}`, false, false},
		{"failed status", http.StatusOK, `{"status":"failed"}`, false, true},
		{"not found", http.StatusNotFound, `{"status":"failed","message":"Invalid transaction"}`, false, true},
		{"server error", http.StatusBadGateway, `upstream down`, true, false},
		{"unreadable body", http.StatusOK, `<html>`, true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transaction/verify/tx_123", r.URL.Path)
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(tc.body))
			})

			result, err := client.Verify(context.Background(), &domain.Payment{ID: "pay-1", TransactionID: "tx_123"})

			switch {
			case tc.wantUnavailable:
				assert.ErrorIs(t, err, ErrUnavailable)
			case tc.wantBusiness:
				assert.True(t, IsBusinessError(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, "success", result.Status)
			}
		})
	}
}

func TestVerify_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(Config{BaseURL: server.URL, SecretKey: "sk-test", Timeout: time.Second}, zap.NewNop())

	_, err := client.Verify(context.Background(), &domain.Payment{ID: "pay-1", TransactionID: "tx_123"})

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})
	client.http.Timeout = 20 * time.Millisecond

	_, err := client.Verify(context.Background(), &domain.Payment{ID: "pay-1", TransactionID: "tx_123"})

	assert.ErrorIs(t, err, ErrUnavailable)
}
