package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a payment order. Transitions are
// forward-only: created -> attempted -> paid | failed.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusAttempted OrderStatus = "attempted"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "failed"
)

// TerminalStatuses are the states no later event may leave.
var TerminalStatuses = []OrderStatus{OrderStatusPaid, OrderStatusFailed}

// Terminal reports whether the status accepts no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed
}

// PaymentOrder is the local record of a gateway order. The gateway remains
// the source of truth for authoritative payment status; this row exists so
// verification and webhook delivery can reconcile idempotently.
type PaymentOrder struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID  string      `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_id"` // gateway order id
	Receipt  string      `gorm:"type:varchar(128);index;not null" json:"receipt"`
	Amount   int64       `gorm:"not null" json:"amount"` // minor currency unit
	Currency string      `gorm:"type:varchar(10);not null" json:"currency"`
	Status   OrderStatus `gorm:"type:varchar(20);index;not null" json:"status"`

	UserID        string `gorm:"type:varchar(64);index" json:"user_id,omitempty"`
	UserEmail     string `gorm:"type:varchar(255)" json:"user_email,omitempty"`
	ItemCount     int    `json:"item_count,omitempty"`
	DeliveryCity  string `gorm:"type:varchar(128)" json:"delivery_city,omitempty"`
	DeliveryState string `gorm:"type:varchar(128)" json:"delivery_state,omitempty"`

	PaymentID *string `gorm:"type:varchar(64);uniqueIndex" json:"payment_id,omitempty"` // gateway payment id, set on terminal transition
	Method    *string `gorm:"type:varchar(32)" json:"method,omitempty"`

	// Unseen marks rows created by a webhook for an order this service never
	// created locally (upsert-on-first-sight).
	Unseen bool `gorm:"not null;default:false" json:"unseen"`

	GatewayEventPayload *string `gorm:"type:jsonb" json:"-"` // last verified webhook body, for audit

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	FailedAt  *time.Time `json:"failed_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
