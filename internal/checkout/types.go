package checkout

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/orderstack/checkout-service/internal/staging"
	pkgerrors "github.com/orderstack/checkout-service/pkg/errors"
)

// LineItemInput is a cart entry as submitted by the client. Quantity arrives
// as a JSON number and may be fractional; it is floored during normalization.
type LineItemInput struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity float64         `json:"quantity"`
}

// CartInput is the checkout request payload.
type CartInput struct {
	Items           []LineItemInput         `json:"items"`
	TotalAmount     decimal.Decimal         `json:"totalAmount"`
	ShippingDetails staging.ShippingDetails `json:"shippingDetails"`
}

// InitiateResult carries the created session back to the client.
type InitiateResult struct {
	SessionID   string `json:"id"`
	RedirectURL string `json:"url,omitempty"`
}

// normalizeCart validates the submitted cart and converts it into the staged
// order shape. Fractional quantities are floored before the positivity check.
func normalizeCart(input CartInput) (*staging.Order, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	items := make([]staging.LineItem, 0, len(input.Items))
	for i, item := range input.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required").
				WithDetails(map[string]any{"index": i})
		}
		if item.Price.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price must be positive").
				WithDetails(map[string]any{"index": i, "name": name})
		}
		if math.IsNaN(item.Quantity) || math.IsInf(item.Quantity, 0) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be a finite number").
				WithDetails(map[string]any{"index": i, "name": name})
		}
		qty := int64(math.Floor(item.Quantity))
		if qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1").
				WithDetails(map[string]any{"index": i, "name": name})
		}
		items = append(items, staging.LineItem{
			Name:     name,
			Price:    item.Price,
			Quantity: qty,
		})
	}

	if input.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must be positive")
	}

	return &staging.Order{
		Items:           items,
		TotalAmount:     input.TotalAmount,
		ShippingDetails: input.ShippingDetails,
	}, nil
}
