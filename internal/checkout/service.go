package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orderstack/checkout-service/internal/fulfillment"
	"github.com/orderstack/checkout-service/internal/payments"
	"github.com/orderstack/checkout-service/internal/staging"
	"github.com/orderstack/checkout-service/pkg/config"
	"github.com/orderstack/checkout-service/pkg/db"
	"github.com/orderstack/checkout-service/pkg/db/models"
	"github.com/orderstack/checkout-service/pkg/enums"
	pkgerrors "github.com/orderstack/checkout-service/pkg/errors"
	"github.com/orderstack/checkout-service/pkg/logger"
	"github.com/orderstack/checkout-service/pkg/metrics"
	"github.com/orderstack/checkout-service/pkg/outbox"
	"github.com/orderstack/checkout-service/pkg/stripe"
)

const (
	metadataCustomerID = "customer_id"
	metadataStagingKey = "staging_key"

	centsPerUnit = 100
)

var decimalCents = decimal.NewFromInt(centsPerUnit)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionGateway interface {
	CreateCheckoutSession(ctx context.Context, params stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}

type orderStager interface {
	Put(ctx context.Context, key string, order staging.Order) error
	Get(ctx context.Context, key string) (*staging.Order, error)
	Delete(ctx context.Context, key string) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ConfirmOutcome tells the controller which page to redirect to.
type ConfirmOutcome int

const (
	// OutcomeCompleted means this call won the pending->completed transition.
	OutcomeCompleted ConfirmOutcome = iota
	// OutcomeAlreadyCompleted means a previous call already settled the payment.
	OutcomeAlreadyCompleted
	// OutcomeFailed means the payment did not settle.
	OutcomeFailed
)

// Service executes the checkout session lifecycle.
type Service interface {
	Initiate(ctx context.Context, customerID string, input CartInput) (*InitiateResult, error)
	ConfirmSuccess(ctx context.Context, sessionID string) (ConfirmOutcome, error)
	ConfirmFailure(ctx context.Context, sessionID string) error
}

type service struct {
	tx       txRunner
	gateway  sessionGateway
	payments payments.Repository
	stager   orderStager
	outbox   outboxPublisher
	cfg      config.CheckoutConfig
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	now      func() time.Time
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	gateway sessionGateway,
	paymentsRepo payments.Repository,
	stager orderStager,
	publisher outboxPublisher,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("session gateway required")
	}
	if paymentsRepo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if stager == nil {
		return nil, fmt.Errorf("order stager required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:       tx,
		gateway:  gateway,
		payments: paymentsRepo,
		stager:   stager,
		outbox:   publisher,
		cfg:      cfg,
		logg:     logg,
		metrics:  checkoutMetrics,
		now:      time.Now,
	}, nil
}

func (s *service) Initiate(ctx context.Context, customerID string, input CartInput) (*InitiateResult, error) {
	started := s.now()
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	order, err := normalizeCart(input)
	if err != nil {
		s.metrics.IncInitiated("invalid")
		return nil, err
	}

	ctx = s.logg.WithCustomerID(ctx, customerID)

	stagingKey := staging.Key(customerID, s.now())
	if err := s.stager.Put(ctx, stagingKey, *order); err != nil {
		s.metrics.IncInitiated("error")
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, stripe.CheckoutSessionCreateParams{
		LineItems:  toGatewayLineItems(order.Items),
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
		Metadata: map[string]string{
			metadataCustomerID: customerID,
			metadataStagingKey: stagingKey,
		},
	})
	if err != nil {
		s.metrics.IncInitiated("error")
		s.discardStagedOrder(ctx, stagingKey)
		return nil, err
	}

	record := &models.Payment{
		CustomerID:    customerID,
		Amount:        order.TotalAmount,
		Method:        enums.PaymentMethodCard,
		TransactionID: session.ID,
		Status:        enums.PaymentStatusPending,
	}
	if _, err := s.payments.Create(ctx, record); err != nil {
		s.metrics.IncInitiated("error")
		s.discardStagedOrder(ctx, stagingKey)
		if db.IsUniqueViolation(err, "transaction_id") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payment record already exists for session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "recording pending payment")
	}

	s.logg.Info(s.logg.WithSessionID(ctx, session.ID), "checkout session created")
	s.metrics.IncInitiated("success")
	s.metrics.ObserveDuration("initiate", s.now().Sub(started))
	return &InitiateResult{SessionID: session.ID, RedirectURL: session.URL}, nil
}

func (s *service) ConfirmSuccess(ctx context.Context, sessionID string) (ConfirmOutcome, error) {
	started := s.now()
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return OutcomeFailed, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)

	session, err := s.gateway.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return OutcomeFailed, err
	}

	customerID := session.Metadata[metadataCustomerID]
	stagingKey := session.Metadata[metadataStagingKey]
	if customerID == "" || stagingKey == "" {
		return OutcomeFailed, pkgerrors.New(pkgerrors.CodeValidation, "session metadata incomplete")
	}
	ctx = s.logg.WithCustomerID(ctx, customerID)

	if session.PaymentStatus != stripe.PaymentStatusPaid {
		reason := fmt.Sprintf("payment_status=%s", session.PaymentStatus)
		if _, err := s.payments.FailPending(ctx, sessionID, &reason); err != nil {
			return OutcomeFailed, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "marking payment failed")
		}
		s.logg.Warn(ctx, "checkout session not paid")
		s.metrics.IncConfirmation("failed")
		return OutcomeFailed, nil
	}

	record, err := s.payments.FindByTransactionID(ctx, sessionID)
	if err != nil {
		return OutcomeFailed, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading payment record")
	}
	if record == nil {
		return OutcomeFailed, pkgerrors.New(pkgerrors.CodeNotFound, "payment record not found")
	}
	if record.CustomerID != customerID {
		return OutcomeFailed, pkgerrors.New(pkgerrors.CodeConflict, "payment record does not belong to session customer")
	}
	if record.Status == enums.PaymentStatusCompleted {
		s.metrics.IncConfirmation("replayed")
		return OutcomeAlreadyCompleted, nil
	}

	order, err := s.stager.Get(ctx, stagingKey)
	if err != nil {
		return OutcomeFailed, err
	}
	if order == nil {
		// The staged order is the only source of the fulfillment payload;
		// never reconstruct one from the session.
		return OutcomeFailed, pkgerrors.New(pkgerrors.CodeStagingMiss, "staged order missing or expired")
	}

	outcome := OutcomeCompleted
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.payments.WithTx(tx)
		won, err := repo.CompletePending(ctx, sessionID, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "completing payment")
		}
		if !won {
			// The transition can also be lost to the unconditional failure
			// path; only a record that actually completed is a replay.
			current, err := repo.FindByTransactionID(ctx, sessionID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "re-reading payment record")
			}
			if current != nil && current.Status == enums.PaymentStatusCompleted {
				outcome = OutcomeAlreadyCompleted
				return nil
			}
			outcome = OutcomeFailed
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderConfirmed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   record.ID,
			Actor:         &outbox.ActorRef{CustomerID: customerID},
			Data:          fulfillment.NewOrderMessage(customerID, record.ID.String(), *order),
			Version:       1,
		})
	})
	if err != nil {
		return OutcomeFailed, err
	}

	switch outcome {
	case OutcomeCompleted:
		s.discardStagedOrder(ctx, stagingKey)
		s.logg.Info(ctx, "payment completed, fulfillment queued")
		s.metrics.IncConfirmation("completed")
	case OutcomeAlreadyCompleted:
		s.metrics.IncConfirmation("replayed")
	default:
		s.logg.Warn(ctx, "paid session lost the settle race to a failed record")
		s.metrics.IncConfirmation("failed")
	}
	s.metrics.ObserveDuration("confirm_success", s.now().Sub(started))
	return outcome, nil
}

func (s *service) ConfirmFailure(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)

	reason := "canceled"
	changed, err := s.payments.FailPending(ctx, sessionID, &reason)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "marking payment failed")
	}
	if changed {
		s.logg.Info(ctx, "payment marked failed")
		s.metrics.IncConfirmation("failed")
	}
	return nil
}

func (s *service) discardStagedOrder(ctx context.Context, key string) {
	if err := s.stager.Delete(ctx, key); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "staging_key", key), "failed to discard staged order")
	}
}

func toGatewayLineItems(items []staging.LineItem) []stripe.LineItem {
	out := make([]stripe.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, stripe.LineItem{
			Name:            item.Name,
			UnitAmountMinor: item.Price.Mul(decimalCents).Round(0).IntPart(),
			Quantity:        item.Quantity,
		})
	}
	return out
}
