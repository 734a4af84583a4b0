package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/models"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/services"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func webhookBody(event, orderID, paymentID string, amount int64) []byte {
	return []byte(fmt.Sprintf(
		`{"event":%q,"payload":{"payment":{"entity":{"id":%q,"order_id":%q,"amount":%d,"currency":"INR","status":"captured","method":"upi"}}}}`,
		event, paymentID, orderID, amount,
	))
}

func signedWebhook(event, orderID, paymentID string, amount int64) ([]byte, string) {
	body := webhookBody(event, orderID, paymentID, amount)
	return body, services.ComputeWebhookSignature(body, testWebhookSecret)
}

func TestHandleWebhook_CapturedMarksPaid(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, "order_abc")
	sns := &mockSNS{}
	svc := newTestService(repo, &mockGateway{}, sns)

	body, sig := signedWebhook("payment.captured", "order_abc", "pay_xyz", 50000)
	svcErr := svc.HandleWebhook(context.Background(), body, sig)

	assert.Nil(t, svcErr)
	order := repo.get("order_abc")
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.NotNil(t, order.PaymentID)
	assert.Equal(t, "pay_xyz", *order.PaymentID)

	waitForEvents(t, sns, 1)
	assert.Equal(t, "payment_succeeded", sns.last().Type)
}

func TestHandleWebhook_FailedMarksFailed(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, "order_abc")
	sns := &mockSNS{}
	svc := newTestService(repo, &mockGateway{}, sns)

	body, sig := signedWebhook("payment.failed", "order_abc", "pay_xyz", 50000)
	svcErr := svc.HandleWebhook(context.Background(), body, sig)

	assert.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusFailed, repo.get("order_abc").Status)

	waitForEvents(t, sns, 1)
	assert.Equal(t, "payment_failed", sns.last().Type)
}

func TestHandleWebhook_DuplicateDeliveryIsNoOp(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, "order_abc")
	sns := &mockSNS{}
	svc := newTestService(repo, &mockGateway{}, sns)

	body, sig := signedWebhook("payment.captured", "order_abc", "pay_xyz", 50000)

	assert.Nil(t, svc.HandleWebhook(context.Background(), body, sig))
	// Gateway retries deliver the exact same body and signature.
	assert.Nil(t, svc.HandleWebhook(context.Background(), body, sig))

	assert.Equal(t, models.OrderStatusPaid, repo.get("order_abc").Status)

	waitForEvents(t, sns, 1)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, sns.count())
}

func TestHandleWebhook_BadSignatureFailsClosed(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, "order_abc")
	sns := &mockSNS{}
	svc := newTestService(repo, &mockGateway{}, sns)

	body := webhookBody("payment.captured", "order_abc", "pay_xyz", 50000)
	svcErr := svc.HandleWebhook(context.Background(), body, "not-the-signature")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
	assert.Equal(t, models.OrderStatusCreated, repo.get("order_abc").Status)
	assert.Equal(t, 0, sns.count())
}

func TestHandleWebhook_UnknownEventTypeAcknowledged(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, "order_abc")
	sns := &mockSNS{}
	svc := newTestService(repo, &mockGateway{}, sns)

	body, sig := signedWebhook("payment.authorized", "order_abc", "pay_xyz", 50000)
	svcErr := svc.HandleWebhook(context.Background(), body, sig)

	// Forward compatibility: unknown types are acknowledged, never rejected.
	assert.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusCreated, repo.get("order_abc").Status)
	assert.Equal(t, 0, sns.count())
}

func TestHandleWebhook_UnseenOrderUpserted(t *testing.T) {
	repo := newMockOrderRepo()
	sns := &mockSNS{}
	svc := newTestService(repo, &mockGateway{}, sns)

	body, sig := signedWebhook("payment.captured", "order_unknown", "pay_777", 1200)
	svcErr := svc.HandleWebhook(context.Background(), body, sig)

	assert.Nil(t, svcErr)
	order := repo.get("order_unknown")
	assert.NotNil(t, order)
	assert.True(t, order.Unseen)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, int64(1200), order.Amount)

	waitForEvents(t, sns, 1)
	assert.True(t, sns.last().Unseen)
}

func TestHandleWebhook_MissingSecret(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	svc := services.NewPaymentService(&mockGateway{}, newMockOrderRepo(), &mockSNS{}, "",
		services.Credentials{KeyID: testKeyID, KeySecret: testSecret}, logger)

	body, sig := signedWebhook("payment.captured", "order_abc", "pay_xyz", 50000)
	svcErr := svc.HandleWebhook(context.Background(), body, sig)

	assert.NotNil(t, svcErr)
	assert.Equal(t, 500, svcErr.StatusCode)
}

// Concurrent verify + webhook for the same order must resolve to exactly one
// terminal transition and one published event.
func TestConcurrentVerifyAndWebhook(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, "order_abc")
	sns := &mockSNS{}
	svc := newTestService(repo, &mockGateway{fetchResp: nil, fetchErr: fmt.Errorf("unavailable")}, sns)

	sig := services.ComputeOrderSignature("order_abc", "pay_xyz", testSecret)
	body, whSig := signedWebhook("payment.captured", "order_abc", "pay_xyz", 50000)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = svc.VerifyPayment(context.Background(), &models.VerifyPaymentRequest{
			OrderID: "order_abc", PaymentID: "pay_xyz", Signature: sig,
		})
	}()
	go func() {
		defer wg.Done()
		_ = svc.HandleWebhook(context.Background(), body, whSig)
	}()
	wg.Wait()

	order := repo.get("order_abc")
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.True(t, order.Status.Terminal())

	waitForEvents(t, sns, 1)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, sns.count())
}
