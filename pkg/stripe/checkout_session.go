package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/orderstack/checkout-service/pkg/errors"
)

// LineItem describes a single cart entry priced in minor units.
type LineItem struct {
	Name            string
	UnitAmountMinor int64
	Quantity        int64
	Currency        string
}

// CheckoutSessionCreateParams carries everything needed to open a hosted session.
type CheckoutSessionCreateParams struct {
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the subset of Stripe's session the service consumes.
type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	AmountTotal   int64
	Metadata      map[string]string
}

// PaymentStatusPaid is Stripe's settled payment status on a checkout session.
const PaymentStatusPaid = string(stripe.CheckoutSessionPaymentStatusPaid)

// CreateCheckoutSession opens a hosted checkout session for the given cart.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionCreateParams) (*CheckoutSession, error) {
	req := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	for _, item := range params.LineItems {
		currency := item.Currency
		if currency == "" {
			currency = string(stripe.CurrencyUSD)
		}
		req.LineItems = append(req.LineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.UnitAmountMinor),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	for k, v := range params.Metadata {
		req.AddMetadata(k, v)
	}

	c.log(ctx, "request", "create_checkout_session", map[string]any{
		"line_items": len(params.LineItems),
	})

	sess, err := c.api.V1CheckoutSessions.Create(ctx, req)
	if err != nil {
		c.log(ctx, "error", "create_checkout_session", map[string]any{"error": err.Error()})
		return nil, c.mapStripeError(err, "create checkout session")
	}

	c.log(ctx, "response", "create_checkout_session", map[string]any{
		"session_id": sess.ID,
	})
	return fromStripeSession(sess), nil
}

// RetrieveCheckoutSession loads a session by ID for payment confirmation.
func (c *Client) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	c.log(ctx, "request", "retrieve_checkout_session", map[string]any{
		"session_id": sessionID,
	})

	sess, err := c.api.V1CheckoutSessions.Retrieve(ctx, sessionID, &stripe.CheckoutSessionRetrieveParams{})
	if err != nil {
		c.log(ctx, "error", "retrieve_checkout_session", map[string]any{"error": err.Error()})
		return nil, c.mapStripeError(err, "retrieve checkout session")
	}

	c.log(ctx, "response", "retrieve_checkout_session", map[string]any{
		"session_id":     sess.ID,
		"payment_status": string(sess.PaymentStatus),
	})
	return fromStripeSession(sess), nil
}

func fromStripeSession(sess *stripe.CheckoutSession) *CheckoutSession {
	if sess == nil {
		return nil
	}
	return &CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
		AmountTotal:   sess.AmountTotal,
		Metadata:      sess.Metadata,
	}
}

func (c *Client) mapStripeError(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *stripe.Error
	if errors.As(err, &apiErr) {
		code := domainCodeForStatus(apiErr.HTTPStatusCode)
		return pkgerrors.Wrap(code, err, fmt.Sprintf("stripe %s failed", op))
	}
	return pkgerrors.Wrap(pkgerrors.CodeGateway, err, fmt.Sprintf("stripe %s failed", op))
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeGateway
	}
}
