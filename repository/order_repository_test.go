package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/models"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func TestCreate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	order := &models.PaymentOrder{
		ID:       uuid.New(),
		OrderID:  "order_abc",
		Receipt:  "rcpt_1",
		Amount:   50000,
		Currency: "INR",
		Status:   models.OrderStatusCreated,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payment_orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(order.ID))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), order)
	assert.NoError(t, err)
}

func TestFindByOrderID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payment_orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	order, err := repo.FindByOrderID(context.Background(), "order_missing")
	assert.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, order)
}

func TestFindByOrderID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "order_id", "receipt", "amount", "currency", "status", "created_at", "updated_at"}).
		AddRow(id, "order_abc", "rcpt_1", 50000, "INR", models.OrderStatusCreated, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payment_orders"`)).
		WillReturnRows(rows)

	order, err := repo.FindByOrderID(context.Background(), "order_abc")
	assert.NoError(t, err)
	assert.Equal(t, "order_abc", order.OrderID)
	assert.Equal(t, int64(50000), order.Amount)
}

func TestTransitionStatus_Applied(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payment_orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := repo.TransitionStatus(context.Background(), "order_abc", models.OrderStatusPaid, map[string]interface{}{
		"payment_id": "pay_xyz",
	})
	assert.NoError(t, err)
	assert.True(t, applied)
}

func TestTransitionStatus_TerminalNoOp(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	// Row already terminal: the conditional WHERE matches nothing.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payment_orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := repo.TransitionStatus(context.Background(), "order_abc", models.OrderStatusFailed, nil)
	assert.NoError(t, err)
	assert.False(t, applied)
}

func TestCreateIfAbsent_Conflict(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	order := &models.PaymentOrder{
		ID:       uuid.New(),
		OrderID:  "order_abc",
		Receipt:  "unseen:order_abc",
		Amount:   50000,
		Currency: "INR",
		Status:   models.OrderStatusPaid,
		Unseen:   true,
	}

	// ON CONFLICT DO NOTHING against an existing row inserts nothing.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payment_orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	inserted, err := repo.CreateIfAbsent(context.Background(), order)
	assert.NoError(t, err)
	assert.False(t, inserted)
}

func TestCreateIfAbsent_Inserted(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	order := &models.PaymentOrder{
		ID:       uuid.New(),
		OrderID:  "order_new",
		Receipt:  "unseen:order_new",
		Amount:   1200,
		Currency: "INR",
		Status:   models.OrderStatusFailed,
		Unseen:   true,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payment_orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(order.ID))
	mock.ExpectCommit()

	inserted, err := repo.CreateIfAbsent(context.Background(), order)
	assert.NoError(t, err)
	assert.True(t, inserted)
}
