package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orderstack/checkout-service/api/controllers"
	"github.com/orderstack/checkout-service/api/middleware"
	checkoutsvc "github.com/orderstack/checkout-service/internal/checkout"
	"github.com/orderstack/checkout-service/pkg/config"
	"github.com/orderstack/checkout-service/pkg/logger"
	pkgredis "github.com/orderstack/checkout-service/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *pkgredis.Client,
	pubsubP controllers.Pinger,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, pubsubP))
	})

	r.Handle("/metrics", promhttp.Handler())

	// The gateway calls back here with the customer's browser; no bearer
	// token is available on these redirects.
	r.Get("/success", controllers.CheckoutSuccess(checkoutService, cfg.Checkout, logg))
	r.Get("/failure", controllers.CheckoutFailure(checkoutService, cfg.Checkout, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Post("/checkout-session", controllers.CreateCheckoutSession(checkoutService, logg))
	})

	return r
}
