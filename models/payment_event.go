package models

import "time"

// PaymentEvent is published to SNS when an order reaches a terminal state.
type PaymentEvent struct {
	Type      string    `json:"type"` // "payment_succeeded" or "payment_failed"
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Unseen    bool      `json:"unseen,omitempty"` // order was first seen via webhook
	Timestamp time.Time `json:"timestamp"`        // UTC event time
}
