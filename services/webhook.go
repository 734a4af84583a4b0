package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// webhookEnvelope is the shape of a gateway webhook delivery. Only the fields
// the reconciler needs are decoded; the raw body is kept for audit.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity webhookPaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type webhookPaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
}

// HandleWebhook verifies and applies an asynchronous gateway event. Delivery
// is at-least-once: duplicates must land as no-ops, and unknown event types
// are acknowledged without side effects so new gateway events never bounce.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, body []byte, signature string) *ServiceError {
	if s.creds.WebhookSecret == "" {
		return configurationError("webhook secret is not configured")
	}
	if !VerifyWebhookSignature(body, signature, s.creds.WebhookSecret) {
		// Fail closed, no state change. The body is untrusted at this point
		// so nothing from it is logged.
		s.logger.Warn("Webhook signature verification failed")
		return &ServiceError{StatusCode: 400, Message: "webhook signature verification failed"}
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		s.logger.Warn("Invalid webhook payload", zap.Error(err))
		return validationError("invalid webhook payload")
	}

	switch env.Event {
	case "payment.captured":
		return s.applyWebhookTransition(ctx, env.Payload.Payment.Entity, body, models.OrderStatusPaid)
	case "payment.failed":
		return s.applyWebhookTransition(ctx, env.Payload.Payment.Entity, body, models.OrderStatusFailed)
	default:
		s.logger.Info("Ignoring webhook event type", zap.String("event_type", env.Event))
		return nil
	}
}

func (s *paymentServiceImpl) applyWebhookTransition(ctx context.Context, entity webhookPaymentEntity, body []byte, to models.OrderStatus) *ServiceError {
	if entity.OrderID == "" || entity.ID == "" {
		s.logger.Warn("Webhook entity missing identifiers",
			zap.String("payment_id", entity.ID),
			zap.String("order_id", entity.OrderID),
		)
		return nil // acknowledge; nothing to reconcile against
	}

	now := time.Now().UTC()
	raw := string(body)

	order, err := s.repo.FindByOrderID(ctx, entity.OrderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Order first seen via webhook: upsert-on-first-sight, flagged unseen.
		inserted, cerr := s.repo.CreateIfAbsent(ctx, s.unseenOrder(entity, raw, to, now))
		if cerr != nil {
			s.logger.Error("Failed to record unseen webhook order",
				zap.String("order_id", entity.OrderID),
				zap.Error(cerr),
			)
			return &ServiceError{StatusCode: 500, Message: "failed to record webhook event"}
		}
		if inserted {
			s.logger.Warn("Order first seen via webhook",
				zap.String("order_id", entity.OrderID),
				zap.String("payment_id", entity.ID),
				zap.String("status", string(to)),
			)
			s.publishEvent(models.PaymentEvent{
				Type:      eventTypeFor(to),
				OrderID:   entity.OrderID,
				PaymentID: entity.ID,
				Amount:    entity.Amount,
				Currency:  entity.Currency,
				Unseen:    true,
				Timestamp: now,
			})
			return nil
		}
		// Lost the race against a concurrent create; reload and transition.
		order, err = s.repo.FindByOrderID(ctx, entity.OrderID)
	}
	if err != nil {
		s.logger.Error("Order lookup failed", zap.String("order_id", entity.OrderID), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to load payment order"}
	}

	updates := map[string]interface{}{
		"payment_id":            entity.ID,
		"gateway_event_payload": raw,
	}
	if entity.Method != "" {
		updates["method"] = entity.Method
	}
	switch to {
	case models.OrderStatusPaid:
		updates["paid_at"] = &now
	case models.OrderStatusFailed:
		updates["failed_at"] = &now
	}

	applied, terr := s.repo.TransitionStatus(ctx, entity.OrderID, to, updates)
	if terr != nil {
		s.logger.Error("Failed to apply webhook transition",
			zap.String("order_id", entity.OrderID),
			zap.String("status", string(to)),
			zap.Error(terr),
		)
		return &ServiceError{StatusCode: 500, Message: "failed to record webhook event"}
	}
	if !applied {
		s.logger.Info("Skipping duplicate webhook delivery",
			zap.String("order_id", entity.OrderID),
			zap.String("payment_id", entity.ID),
			zap.String("status", string(order.Status)),
		)
		return nil
	}

	s.logger.Info("Webhook transition applied",
		zap.String("order_id", entity.OrderID),
		zap.String("payment_id", entity.ID),
		zap.String("status", string(to)),
	)
	s.publishEvent(models.PaymentEvent{
		Type:      eventTypeFor(to),
		OrderID:   order.OrderID,
		PaymentID: entity.ID,
		UserID:    order.UserID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Timestamp: now,
	})
	return nil
}

func (s *paymentServiceImpl) unseenOrder(entity webhookPaymentEntity, raw string, to models.OrderStatus, now time.Time) *models.PaymentOrder {
	order := &models.PaymentOrder{
		ID:                  uuid.New(),
		OrderID:             entity.OrderID,
		Receipt:             "unseen:" + entity.OrderID,
		Amount:              entity.Amount,
		Currency:            entity.Currency,
		Status:              to,
		PaymentID:           &entity.ID,
		Unseen:              true,
		GatewayEventPayload: &raw,
	}
	if entity.Method != "" {
		method := entity.Method
		order.Method = &method
	}
	switch to {
	case models.OrderStatusPaid:
		order.PaidAt = &now
	case models.OrderStatusFailed:
		order.FailedAt = &now
	}
	return order
}

func eventTypeFor(to models.OrderStatus) string {
	if to == models.OrderStatusPaid {
		return "payment_succeeded"
	}
	return "payment_failed"
}
