package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yashrajoria/shopswift/services/payment-service/models"
)

func setupMockDB(t *testing.T) (*PaymentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return NewPaymentRepository(gormDB), mock
}

func TestCreate(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "payments"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.Payment{
		ID:             "9d7c1a3e-5b2f-4e61-8c0a-1f2e3d4c5b6a",
		OrderID:        "o1",
		UserID:         "u1",
		Amount:         1000,
		AmountMinor:    100000,
		Currency:       "INR",
		Provider:       models.ProviderRazorpay,
		GatewayOrderID: "order_1",
		Status:         models.StatusPending,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkCompleted(t *testing.T) {
	t.Run("pending row", func(t *testing.T) {
		repo, mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payments" SET "gateway_payment_id"=$1,"signature"=$2,"status"=$3,"updated_at"=$4 WHERE gateway_order_id = $5 AND status = $6`)).
			WithArgs("pay_1", "sig", models.StatusCompleted, sqlmock.AnyArg(), "order_1", models.StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.MarkCompleted(context.Background(), "order_1", "pay_1", "sig"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already processed", func(t *testing.T) {
		repo, mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payments" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.MarkCompleted(context.Background(), "order_1", "pay_1", "sig")
		assert.ErrorIs(t, err, ErrNotPending)
	})
}

func TestMarkFailed(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payments" SET "status"=$1,"updated_at"=$2 WHERE gateway_order_id = $3 AND status = $4`)).
		WithArgs(models.StatusFailed, sqlmock.AnyArg(), "pi_1", models.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.MarkFailed(context.Background(), "pi_1"))
}

func TestFindByGatewayOrderID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "order_id", "user_id", "amount", "amount_minor", "currency", "provider", "gateway_order_id", "status", "created_at", "updated_at"}).
			AddRow("p1", "o1", "u1", 1000.0, int64(100000), "INR", "razorpay", "order_1", "completed", now, now)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments" WHERE gateway_order_id = $1`)).
			WillReturnRows(rows)

		p, err := repo.FindByGatewayOrderID(context.Background(), "order_1")
		require.NoError(t, err)
		assert.Equal(t, "o1", p.OrderID)
		assert.Equal(t, models.StatusCompleted, p.Status)
		assert.Equal(t, int64(100000), p.AmountMinor)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByGatewayOrderID(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFindByOrderID(t *testing.T) {
	repo, mock := setupMockDB(t)
	rows := sqlmock.NewRows([]string{"id", "order_id", "user_id", "status"}).
		AddRow("p2", "o1", "u1", "pending").
		AddRow("p1", "o1", "u1", "failed")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments" WHERE order_id = $1 ORDER BY created_at DESC`)).
		WithArgs("o1").
		WillReturnRows(rows)

	payments, err := repo.FindByOrderID(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "p2", payments[0].ID)
}
