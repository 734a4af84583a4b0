package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Order is the sanitized subset of a gateway order we let out of this package.
type Order struct {
	ID        string
	Amount    int64
	Currency  string
	Receipt   string
	Status    string
	CreatedAt int64
}

// Payment is the sanitized subset of a gateway payment.
type Payment struct {
	ID        string
	OrderID   string
	Amount    int64
	Currency  string
	Status    string
	Method    string
	Email     string
	CreatedAt int64
}

// CreateOrderParams is the outbound create-order call. Notes are opaque
// non-sensitive context stored gateway-side for reconciliation and audit.
type CreateOrderParams struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]interface{}
}

// Client is the outbound payment gateway surface. Wrapping the SDK behind an
// interface keeps the service layer mockable in tests.
type Client interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}

type razorpayClient struct {
	client *razorpay.Client
}

// NewRazorpayClient builds a gateway client authenticated with the merchant
// key pair. Requests are bounded by timeoutSeconds; the create-order call is
// never retried here (duplicate-charge risk), retries for idempotent reads
// belong to the caller.
func NewRazorpayClient(keyID, keySecret string, timeoutSeconds int64) Client {
	c := razorpay.NewClient(keyID, keySecret)
	if timeoutSeconds > 0 {
		c.SetTimeout(int16(timeoutSeconds))
	}
	return &razorpayClient{client: c}
}

func (r *razorpayClient) CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":   params.Amount,
		"currency": params.Currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		data["notes"] = params.Notes
	}

	body, err := r.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	return &Order{
		ID:        asString(body["id"]),
		Amount:    asInt64(body["amount"]),
		Currency:  asString(body["currency"]),
		Receipt:   asString(body["receipt"]),
		Status:    asString(body["status"]),
		CreatedAt: asInt64(body["created_at"]),
	}, nil
}

func (r *razorpayClient) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := r.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay payment fetch: %w", err)
	}

	return &Payment{
		ID:        asString(body["id"]),
		OrderID:   asString(body["order_id"]),
		Amount:    asInt64(body["amount"]),
		Currency:  asString(body["currency"]),
		Status:    asString(body["status"]),
		Method:    asString(body["method"]),
		Email:     asString(body["email"]),
		CreatedAt: asInt64(body["created_at"]),
	}, nil
}

// The SDK returns decoded JSON maps, so numbers arrive as float64.

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
