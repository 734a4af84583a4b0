package models

import "time"

// OrderItem is the non-sensitive view of a cart line forwarded with an order.
type OrderItem struct {
	MedicineID string `json:"medicineId,omitempty"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
	Price      int64  `json:"price,omitempty"`
}

// DeliveryAddress carries only the fields attached to gateway notes.
type DeliveryAddress struct {
	Line1      string `json:"line1,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// CreateOrderRequest is the body of POST /payment/create-order.
type CreateOrderRequest struct {
	Amount          int64            `json:"amount"` // minor currency unit
	Currency        string           `json:"currency"`
	Receipt         string           `json:"receipt"`
	UserID          string           `json:"userId,omitempty"`
	UserEmail       string           `json:"userEmail,omitempty"`
	Items           []OrderItem      `json:"items,omitempty"`
	DeliveryAddress *DeliveryAddress `json:"deliveryAddress,omitempty"`
}

// OrderSummary is the sanitized projection of a gateway order returned to
// clients. Internal gateway fields are never exposed.
type OrderSummary struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
}

// VerifyPaymentRequest is the client-side completion handshake.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// PaymentDetails is the sanitized projection of a gateway payment.
type PaymentDetails struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId,omitempty"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Method    string `json:"method,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// VerificationResult is returned on a successful signature check. Enriched is
// false when the best-effort gateway fetch failed; the verification itself
// still stands.
type VerificationResult struct {
	Verified   bool            `json:"verified"`
	Enriched   bool            `json:"enriched"`
	OrderID    string          `json:"orderId"`
	PaymentID  string          `json:"paymentId"`
	Payment    *PaymentDetails `json:"payment,omitempty"`
	VerifiedAt time.Time       `json:"verifiedAt"`
}

// ConfigStatus is the diagnostic response of GET /payment/config. It never
// carries secret values, only presence booleans and a truncated key id.
type ConfigStatus struct {
	KeyConfigured           bool   `json:"razorpayKeyConfigured"`
	WebhookSecretConfigured bool   `json:"webhookSecretConfigured"`
	KeyIDPreview            string `json:"keyIdPreview,omitempty"`
}
