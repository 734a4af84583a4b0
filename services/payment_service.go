package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/gateway"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/models"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/repository"
	aws_pkg "github.com/amalmariyasibi/OnlineMedicalStore-sub002/pkg/aws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Credentials holds the merchant key pair and the webhook signing secret.
// Presence is validated per operation, not at startup, so the diagnostics
// endpoint can report missing configuration instead of the process refusing
// to boot.
type Credentials struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// PaymentService is the payment core: order intent creation, client-side
// signature verification and webhook reconciliation.
type PaymentService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.OrderSummary, *ServiceError)
	VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerificationResult, *ServiceError)
	GetPayment(ctx context.Context, paymentID string) (*models.PaymentDetails, *ServiceError)
	HandleWebhook(ctx context.Context, body []byte, signature string) *ServiceError
	ConfigStatus() models.ConfigStatus
}

type paymentServiceImpl struct {
	gateway     gateway.Client
	repo        repository.PaymentOrderRepository
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	creds       Credentials
	logger      *zap.Logger
}

// NewPaymentService wires the payment core with its collaborators. All
// dependencies are injected; nothing here touches process-wide state.
func NewPaymentService(
	gw gateway.Client,
	repo repository.PaymentOrderRepository,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	creds Credentials,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		gateway:     gw,
		repo:        repo,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		creds:       creds,
		logger:      logger,
	}
}

// CreateOrder validates the request, creates the order gateway-side and
// persists the local row in status "created".
func (s *paymentServiceImpl) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.OrderSummary, *ServiceError) {
	if req.Amount <= 0 || req.Currency == "" || req.Receipt == "" {
		return nil, validationError("amount, currency and receipt are required")
	}
	if s.creds.KeyID == "" || s.creds.KeySecret == "" {
		return nil, configurationError("payment gateway credentials are not configured")
	}

	order, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderParams{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    orderNotes(req),
	})
	if err != nil {
		s.logger.Error("Gateway order creation failed",
			zap.String("receipt", req.Receipt),
			zap.Error(err),
		)
		return nil, gatewayError("gateway order creation failed: " + err.Error())
	}

	local := &models.PaymentOrder{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Receipt:   order.Receipt,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Status:    models.OrderStatusCreated,
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
		ItemCount: len(req.Items),
	}
	if req.DeliveryAddress != nil {
		local.DeliveryCity = req.DeliveryAddress.City
		local.DeliveryState = req.DeliveryAddress.State
	}
	if err := s.repo.Create(ctx, local); err != nil {
		s.logger.Error("Failed to persist payment order",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 500, Message: "failed to record payment order"}
	}

	s.logger.Info("Payment order created",
		zap.String("order_id", order.ID),
		zap.String("receipt", order.Receipt),
		zap.Int64("amount", order.Amount),
	)

	return &models.OrderSummary{
		ID:        order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Receipt:   order.Receipt,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	}, nil
}

// orderNotes collects the non-sensitive context stashed gateway-side for
// reconciliation and audit. Never put secrets here.
func orderNotes(req *models.CreateOrderRequest) map[string]interface{} {
	notes := map[string]interface{}{}
	if req.UserID != "" {
		notes["user_id"] = req.UserID
	}
	if req.UserEmail != "" {
		notes["user_email"] = req.UserEmail
	}
	if len(req.Items) > 0 {
		notes["item_count"] = len(req.Items)
	}
	if req.DeliveryAddress != nil {
		if req.DeliveryAddress.City != "" {
			notes["delivery_city"] = req.DeliveryAddress.City
		}
		if req.DeliveryAddress.State != "" {
			notes["delivery_state"] = req.DeliveryAddress.State
		}
	}
	return notes
}

// VerifyPayment checks the client-supplied signature and, on match, moves the
// order to paid. The gateway fetch is best-effort enrichment: a signature
// match alone is sufficient proof of payment.
func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerificationResult, *ServiceError) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, validationError("razorpay_order_id, razorpay_payment_id and razorpay_signature are required")
	}
	if s.creds.KeySecret == "" {
		return nil, configurationError("payment signing secret is not configured")
	}

	order, findErr := s.repo.FindByOrderID(ctx, req.OrderID)
	if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
		s.logger.Error("Order lookup failed", zap.String("order_id", req.OrderID), zap.Error(findErr))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load payment order"}
	}

	now := time.Now().UTC()

	if !VerifyOrderSignature(req.OrderID, req.PaymentID, req.Signature, s.creds.KeySecret) {
		s.logger.Warn("Payment signature mismatch",
			zap.String("order_id", req.OrderID),
			zap.String("payment_id", req.PaymentID),
		)
		if order != nil {
			applied, terr := s.repo.TransitionStatus(ctx, req.OrderID, models.OrderStatusFailed, map[string]interface{}{
				"failed_at": &now,
			})
			if terr != nil {
				s.logger.Error("Failed to mark order failed", zap.String("order_id", req.OrderID), zap.Error(terr))
			}
			if applied {
				s.publishEvent(models.PaymentEvent{
					Type:      "payment_failed",
					OrderID:   order.OrderID,
					UserID:    order.UserID,
					Amount:    order.Amount,
					Currency:  order.Currency,
					Timestamp: now,
				})
			}
		}
		return nil, signatureMismatch()
	}

	applied, terr := s.repo.TransitionStatus(ctx, req.OrderID, models.OrderStatusPaid, map[string]interface{}{
		"payment_id": req.PaymentID,
		"paid_at":    &now,
	})
	if terr != nil {
		s.logger.Error("Failed to mark order paid", zap.String("order_id", req.OrderID), zap.Error(terr))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to record payment state"}
	}

	// Best-effort enrichment; one retry is acceptable for this idempotent read.
	payment, fetchErr := s.gateway.FetchPayment(ctx, req.PaymentID)
	if fetchErr != nil {
		payment, fetchErr = s.gateway.FetchPayment(ctx, req.PaymentID)
	}
	if fetchErr != nil {
		s.logger.Warn("Payment enrichment fetch failed",
			zap.String("payment_id", req.PaymentID),
			zap.Error(fetchErr),
		)
	}

	if applied && order != nil {
		s.publishEvent(models.PaymentEvent{
			Type:      "payment_succeeded",
			OrderID:   order.OrderID,
			PaymentID: req.PaymentID,
			UserID:    order.UserID,
			Amount:    order.Amount,
			Currency:  order.Currency,
			Timestamp: now,
		})
	}

	return &models.VerificationResult{
		Verified:   true,
		Enriched:   fetchErr == nil,
		OrderID:    req.OrderID,
		PaymentID:  req.PaymentID,
		Payment:    toPaymentDetails(payment),
		VerifiedAt: now,
	}, nil
}

// GetPayment fetches authoritative payment details from the gateway.
func (s *paymentServiceImpl) GetPayment(ctx context.Context, paymentID string) (*models.PaymentDetails, *ServiceError) {
	if paymentID == "" {
		return nil, validationError("payment id is required")
	}
	if s.creds.KeyID == "" || s.creds.KeySecret == "" {
		return nil, configurationError("payment gateway credentials are not configured")
	}

	payment, err := s.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		s.logger.Error("Payment lookup failed", zap.String("payment_id", paymentID), zap.Error(err))
		return nil, gatewayError("payment lookup failed: " + err.Error())
	}
	return toPaymentDetails(payment), nil
}

// ConfigStatus reports credential presence for the diagnostics endpoint.
// Secret values never leave this method, only a truncated key id preview.
func (s *paymentServiceImpl) ConfigStatus() models.ConfigStatus {
	status := models.ConfigStatus{
		KeyConfigured:           s.creds.KeyID != "" && s.creds.KeySecret != "",
		WebhookSecretConfigured: s.creds.WebhookSecret != "",
	}
	if s.creds.KeyID != "" {
		preview := s.creds.KeyID
		if len(preview) > 8 {
			preview = preview[:8] + "..."
		}
		status.KeyIDPreview = preview
	}
	return status
}

// publishEvent sends a PaymentEvent to SNS fire-and-forget: reconciliation
// must never block on the notification collaborator.
func (s *paymentServiceImpl) publishEvent(event models.PaymentEvent) {
	if s.snsClient == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, _ := json.Marshal(event)
		if err := s.snsClient.Publish(ctx, s.snsTopicArn, payload); err != nil {
			s.logger.Error("Failed to publish payment event",
				zap.String("event_type", event.Type),
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("Payment event published",
			zap.String("event_type", event.Type),
			zap.String("order_id", event.OrderID),
		)
	}()
}

func toPaymentDetails(p *gateway.Payment) *models.PaymentDetails {
	if p == nil {
		return nil
	}
	return &models.PaymentDetails{
		ID:        p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    p.Status,
		Method:    p.Method,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}
