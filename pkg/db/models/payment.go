package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderstack/checkout-service/pkg/enums"
)

// Payment is one payment attempt against the processor. Rows are append-only:
// status moves pending -> completed|failed exactly once and rows are never
// deleted.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    string              `gorm:"column:customer_id;not null"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Method        enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'card'"`
	TransactionID string              `gorm:"column:transaction_id;uniqueIndex:ux_payments_transaction_id;not null"`
	Status        enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	FailureReason *string             `gorm:"column:failure_reason"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default gorm pluralization.
func (Payment) TableName() string {
	return "payments"
}
