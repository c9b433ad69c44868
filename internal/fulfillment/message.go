package fulfillment

import (
	"github.com/shopspring/decimal"

	"github.com/orderstack/checkout-service/internal/staging"
)

// OrderMessage is the payload consumed by downstream fulfillment workers.
type OrderMessage struct {
	UserID          string                  `json:"user_id"`
	PaymentID       string                  `json:"payment_id"`
	Items           []staging.LineItem      `json:"items"`
	TotalAmount     decimal.Decimal         `json:"totalAmount"`
	ShippingDetails staging.ShippingDetails `json:"shippingDetails"`
}

// NewOrderMessage assembles the fulfillment payload from a confirmed payment
// and its staged order.
func NewOrderMessage(customerID, paymentID string, order staging.Order) OrderMessage {
	return OrderMessage{
		UserID:          customerID,
		PaymentID:       paymentID,
		Items:           order.Items,
		TotalAmount:     order.TotalAmount,
		ShippingDetails: order.ShippingDetails,
	}
}
