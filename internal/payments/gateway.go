package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Order is the gateway's view of a created payment order. Amount is in
// minor currency units (paise).
type Order struct {
	ID       string `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Gateway is the payment-provider boundary. Implementations: a mock for
// dev/test and a Razorpay REST client; selected by configuration at
// process start, never branched on inline.
type Gateway interface {
	CreateOrder(amountMinor int, currency string, notes map[string]string) (Order, error)
}

// NewGateway picks the implementation from PAYMENT_PROVIDER ("razorpay"
// or anything else for the mock).
func NewGateway() Gateway {
	if os.Getenv("PAYMENT_PROVIDER") == "razorpay" {
		return &Razorpay{
			keyID:     os.Getenv("RAZORPAY_KEY_ID"),
			keySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
			baseURL:   "https://api.razorpay.com/v1",
			client:    &http.Client{Timeout: 30 * time.Second},
		}
	}
	return Mock{}
}

/* ================================ Mock ================================== */

// Mock creates orders locally with unguessable ids.
type Mock struct{}

func (Mock) CreateOrder(amountMinor int, currency string, _ map[string]string) (Order, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return Order{}, err
	}
	return Order{
		ID:       "order_" + hex.EncodeToString(buf),
		Amount:   amountMinor,
		Currency: currency,
		Status:   "created",
	}, nil
}

/* ============================== Razorpay ================================ */

// Razorpay wraps the minimal order-creation call of the Razorpay Orders
// API with basic auth.
type Razorpay struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func (r *Razorpay) CreateOrder(amountMinor int, currency string, notes map[string]string) (Order, error) {
	body, _ := json.Marshal(map[string]any{
		"amount":          amountMinor,
		"currency":        currency,
		"payment_capture": 1,
		"notes":           notes,
	})
	req, err := http.NewRequest(http.MethodPost, r.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	res, err := r.client.Do(req)
	if err != nil {
		return Order{}, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return Order{}, fmt.Errorf("razorpay order error: %s | %s", res.Status, string(b))
	}
	var out Order
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Order{}, err
	}
	return out, nil
}

/* ============================= Signatures =============================== */

// PaymentSignature computes the hex HMAC-SHA256 the gateway issues over
// "orderID|paymentID" with the key secret.
func PaymentSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidPaymentSignature compares the client-submitted signature in
// constant time.
func ValidPaymentSignature(secret, orderID, paymentID, signature string) bool {
	expected := PaymentSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookSignature computes the hex HMAC-SHA256 over the raw body bytes
// with the webhook secret.
func WebhookSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidWebhookSignature compares the delivery header in constant time.
func ValidWebhookSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := WebhookSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
