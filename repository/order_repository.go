package repository

import (
	"context"
	"time"

	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentOrderRepository persists PaymentOrder rows. Status moves only
// forward; TransitionStatus is the single write path to a terminal state and
// reports whether the transition actually applied, so callers can keep
// downstream side effects idempotent under concurrent writers.
type PaymentOrderRepository interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	FindByOrderID(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.PaymentOrder, error)
	// TransitionStatus atomically sets status on the order unless it is
	// already terminal. Returns true when the row was updated.
	TransitionStatus(ctx context.Context, orderID string, to models.OrderStatus, updates map[string]interface{}) (bool, error)
	// CreateIfAbsent inserts the row unless one with the same order id
	// exists. Returns true when the insert happened. Used by the webhook
	// path for orders first seen gateway-side.
	CreateIfAbsent(ctx context.Context, order *models.PaymentOrder) (bool, error)
}

type gormOrderRepo struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) PaymentOrderRepository {
	return &gormOrderRepo{db: db}
}

func (r *gormOrderRepo) Create(ctx context.Context, order *models.PaymentOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *gormOrderRepo) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepo) FindByPaymentID(ctx context.Context, paymentID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepo) TransitionStatus(ctx context.Context, orderID string, to models.OrderStatus, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now()

	// Conditional update: the WHERE clause excludes terminal rows, so a
	// concurrent verify and webhook race resolves to exactly one winner.
	res := r.db.WithContext(ctx).
		Model(&models.PaymentOrder{}).
		Where("order_id = ? AND status NOT IN ?", orderID, models.TerminalStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormOrderRepo) CreateIfAbsent(ctx context.Context, order *models.PaymentOrder) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(order)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
