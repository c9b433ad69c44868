package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/orderstack/checkout-service/pkg/db/models"
)

// Repository defines persistence operations for payment records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	// CompletePending flips pending -> completed for the customer's
	// transaction and reports whether this call won the transition.
	CompletePending(ctx context.Context, transactionID, customerID string) (bool, error)
	// FailPending flips pending -> failed; completed records are left alone.
	FailPending(ctx context.Context, transactionID string, reason *string) (bool, error)
}
