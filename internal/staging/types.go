package staging

import (
	"github.com/shopspring/decimal"
)

// LineItem is a single cart entry as staged for fulfillment.
type LineItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// ShippingDetails is the delivery address captured at checkout.
type ShippingDetails struct {
	Name         string `json:"name,omitempty"`
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
	Country      string `json:"country,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// Order is the staged order payload held in the cache between session
// creation and payment confirmation.
type Order struct {
	Items           []LineItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingDetails ShippingDetails `json:"shippingDetails"`
}
