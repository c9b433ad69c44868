package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderstack/checkout-service/pkg/db/models"
	"github.com/orderstack/checkout-service/pkg/enums"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'card',
  transaction_id TEXT NOT NULL UNIQUE,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newTestPayment(transactionID string) *models.Payment {
	return &models.Payment{
		ID:            uuid.New(),
		CustomerID:    "cust-1",
		Amount:        decimal.NewFromFloat(19.99),
		Method:        enums.PaymentMethodCard,
		TransactionID: transactionID,
		Status:        enums.PaymentStatusPending,
	}
}

func TestCreateAndFindByTransactionID(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestPayment("cs_test_create"))
	require.NoError(t, err)
	require.NotNil(t, created)

	found, err := repo.FindByTransactionID(ctx, "cs_test_create")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, enums.PaymentStatusPending, found.Status)
	assert.True(t, found.Amount.Equal(decimal.NewFromFloat(19.99)))
}

func TestFindByTransactionIDMissing(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	found, err := repo.FindByTransactionID(context.Background(), "cs_missing")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCompletePendingWinsOnce(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestPayment("cs_test_cas"))
	require.NoError(t, err)

	won, err := repo.CompletePending(ctx, "cs_test_cas", "cust-1")
	require.NoError(t, err)
	assert.True(t, won, "first transition should win")

	// A repeated confirmation must not win the transition again.
	won, err = repo.CompletePending(ctx, "cs_test_cas", "cust-1")
	require.NoError(t, err)
	assert.False(t, won)

	found, err := repo.FindByTransactionID(ctx, "cs_test_cas")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusCompleted, found.Status)
}

func TestCompletePendingScopedToCustomer(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestPayment("cs_test_scope"))
	require.NoError(t, err)

	won, err := repo.CompletePending(ctx, "cs_test_scope", "cust-2")
	require.NoError(t, err)
	assert.False(t, won, "another customer must not settle the record")

	found, err := repo.FindByTransactionID(ctx, "cs_test_scope")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPending, found.Status)
}

func TestCompletePendingDoesNotReviveFailed(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestPayment("cs_test_revive"))
	require.NoError(t, err)

	changed, err := repo.FailPending(ctx, "cs_test_revive", nil)
	require.NoError(t, err)
	require.True(t, changed)

	won, err := repo.CompletePending(ctx, "cs_test_revive", "cust-1")
	require.NoError(t, err)
	assert.False(t, won)

	found, err := repo.FindByTransactionID(ctx, "cs_test_revive")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, found.Status)
}

func TestFailPending(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestPayment("cs_test_fail"))
	require.NoError(t, err)

	reason := "payment_status=unpaid"
	changed, err := repo.FailPending(ctx, "cs_test_fail", &reason)
	require.NoError(t, err)
	assert.True(t, changed)

	found, err := repo.FindByTransactionID(ctx, "cs_test_fail")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, found.Status)
	require.NotNil(t, found.FailureReason)
	assert.Equal(t, reason, *found.FailureReason)
}

func TestFailPendingDoesNotTouchCompleted(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestPayment("cs_test_settled"))
	require.NoError(t, err)

	won, err := repo.CompletePending(ctx, "cs_test_settled", "cust-1")
	require.NoError(t, err)
	require.True(t, won)

	changed, err := repo.FailPending(ctx, "cs_test_settled", nil)
	require.NoError(t, err)
	assert.False(t, changed)

	found, err := repo.FindByTransactionID(ctx, "cs_test_settled")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusCompleted, found.Status)
}

func TestWithTxUsesTransaction(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.WithTx(tx).Create(ctx, newTestPayment("cs_test_tx"))
		return err
	})
	require.NoError(t, err)

	found, err := repo.FindByTransactionID(ctx, "cs_test_tx")
	require.NoError(t, err)
	require.NotNil(t, found)
}
