package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/orderstack/checkout-service/pkg/errors"
	"github.com/orderstack/checkout-service/pkg/redis"
)

// DefaultTTL bounds how long a staged order waits for confirmation.
const DefaultTTL = time.Hour

type cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Store stages orders in the cache between session creation and confirmation.
type Store struct {
	cache cache
	ttl   time.Duration
}

// NewStore builds a staging store with the configured TTL.
func NewStore(cache cache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: cache, ttl: ttl}
}

// Key builds the staging key for a customer at the given creation time.
func Key(customerID string, at time.Time) string {
	return fmt.Sprintf("order:%s:%d", customerID, at.UnixMilli())
}

// Put stages the order under key for the configured TTL.
func (s *Store) Put(ctx context.Context, key string, order Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "encoding staged order")
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "staging order")
	}
	return nil
}

// Get loads a staged order. A missing or expired entry returns (nil, nil);
// the caller decides how to surface the miss.
func (s *Store) Get(ctx context.Context, key string) (*Order, error) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if redis.IsMiss(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading staged order")
	}
	var order Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decoding staged order")
	}
	return &order, nil
}

// Delete removes a staged order once it has been consumed.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.cache.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "deleting staged order")
	}
	return nil
}

// TTL reports the staging window.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
