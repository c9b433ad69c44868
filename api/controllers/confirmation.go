package controllers

import (
	"net/http"

	checkoutsvc "github.com/orderstack/checkout-service/internal/checkout"
	"github.com/orderstack/checkout-service/pkg/config"
	"github.com/orderstack/checkout-service/pkg/logger"
)

// CheckoutSuccess settles a returning payment session. The gateway redirects
// the customer here after the hosted page completes; the outcome is reported
// back as a browser redirect, never as an API error body.
func CheckoutSuccess(svc checkoutsvc.Service, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session_id")
		if svc == nil || sessionID == "" {
			redirectFailure(w, r, cfg)
			return
		}

		ctx := logg.WithSessionID(r.Context(), sessionID)
		outcome, err := svc.ConfirmSuccess(ctx, sessionID)
		if err != nil {
			logg.Error(ctx, "checkout.confirm_success failed", err)
			redirectFailure(w, r, cfg)
			return
		}

		switch outcome {
		case checkoutsvc.OutcomeCompleted, checkoutsvc.OutcomeAlreadyCompleted:
			http.Redirect(w, r, cfg.SuccessPageURL, http.StatusSeeOther)
		default:
			redirectFailure(w, r, cfg)
		}
	}
}

// CheckoutFailure marks a canceled or abandoned session failed and sends the
// customer to the failure page regardless of record state.
func CheckoutFailure(svc checkoutsvc.Service, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session_id")
		if svc != nil && sessionID != "" {
			ctx := logg.WithSessionID(r.Context(), sessionID)
			if err := svc.ConfirmFailure(ctx, sessionID); err != nil {
				logg.Error(ctx, "checkout.confirm_failure failed", err)
			}
		}
		redirectFailure(w, r, cfg)
	}
}

func redirectFailure(w http.ResponseWriter, r *http.Request, cfg config.CheckoutConfig) {
	http.Redirect(w, r, cfg.FailurePageURL, http.StatusSeeOther)
}
