package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/orderstack/checkout-service/api/middleware"
	"github.com/orderstack/checkout-service/api/responses"
	"github.com/orderstack/checkout-service/api/validators"
	checkoutsvc "github.com/orderstack/checkout-service/internal/checkout"
	"github.com/orderstack/checkout-service/internal/staging"
	pkgerrors "github.com/orderstack/checkout-service/pkg/errors"
	"github.com/orderstack/checkout-service/pkg/logger"
)

// CreateCheckoutSession validates the submitted cart, stages it, and opens a
// hosted payment session for the authenticated customer.
func CreateCheckoutSession(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID := middleware.CustomerIDFromContext(r.Context())
		if customerID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity required"))
			return
		}

		var payload checkoutSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Initiate(r.Context(), customerID, payload.toCartInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type checkoutSessionRequest struct {
	Items           []checkoutLineItem      `json:"items" validate:"required,min=1,dive"`
	TotalAmount     decimal.Decimal         `json:"totalAmount" validate:"required"`
	ShippingDetails staging.ShippingDetails `json:"shippingDetails"`
}

type checkoutLineItem struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"required"`
	Quantity float64         `json:"quantity" validate:"required"`
}

func (req checkoutSessionRequest) toCartInput() checkoutsvc.CartInput {
	items := make([]checkoutsvc.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, checkoutsvc.LineItemInput{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return checkoutsvc.CartInput{
		Items:           items,
		TotalAmount:     req.TotalAmount,
		ShippingDetails: req.ShippingDetails,
	}
}
