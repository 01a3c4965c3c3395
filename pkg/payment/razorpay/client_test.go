package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		BaseURL:   server.URL + "/",
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{KeyID: "id"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(64900), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "ORD-1-ABC", req.Receipt)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_9A33XWu170gUtm","entity":"order","amount":64900,"amount_due":64900,"currency":"INR","receipt":"ORD-1-ABC","status":"created","attempts":0}`))
	})

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:   64900,
		Currency: "INR",
		Receipt:  "ORD-1-ABC",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_9A33XWu170gUtm", order.ID)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, int64(64900), order.AmountDue)
}

func TestCreateOrder_RejectsZeroAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway should not be called")
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Currency: "INR"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"bad request", http.StatusBadRequest, ErrInvalidRequest},
		{"server error", http.StatusBadGateway, ErrGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be at least INR 1.00"}}`))
			})

			_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 100, Currency: "INR"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetchPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/payments/pay_29QQoUBi66xm2f", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"pay_29QQoUBi66xm2f","amount":64900,"currency":"INR","status":"captured","order_id":"order_9A33XWu170gUtm","method":"upi","captured":true}`))
	})

	payment, err := client.FetchPayment(context.Background(), "pay_29QQoUBi66xm2f")
	require.NoError(t, err)
	assert.Equal(t, "captured", payment.Status)
	assert.Equal(t, "upi", payment.Method)
	assert.True(t, payment.Captured)
}

func TestVerifySignature(t *testing.T) {
	secret := "rzp_test_secret"
	sig := Sign(secret, "order_1", "pay_1")

	assert.NoError(t, VerifySignature(secret, "order_1", "pay_1", sig))
	assert.ErrorIs(t, VerifySignature(secret, "order_1", "pay_2", sig), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature("other", "order_1", "pay_1", sig), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature(secret, "order_1", "pay_1", ""), ErrSignatureMismatch)
}
