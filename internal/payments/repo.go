package payments

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/orderstack/checkout-service/pkg/db/models"
	"github.com/orderstack/checkout-service/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// CompletePending is the compare-and-set that guards downstream side effects:
// only the caller that moves the row out of pending may publish.
func (r *repository) CompletePending(ctx context.Context, transactionID, customerID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("transaction_id = ? AND customer_id = ? AND payment_status = ?", transactionID, customerID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusCompleted,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FailPending(ctx context.Context, transactionID string, reason *string) (bool, error) {
	updates := map[string]any{
		"payment_status": enums.PaymentStatusFailed,
		"updated_at":     time.Now(),
	}
	if reason != nil {
		updates["failure_reason"] = *reason
	}
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("transaction_id = ? AND payment_status = ?", transactionID, enums.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
