package staging

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type fakeCache struct {
	values  map[string]string
	lastTTL time.Duration
	setErr  error
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.lastTTL = ttl
	switch v := value.(type) {
	case string:
		f.values[key] = v
	case []byte:
		f.values[key] = string(v)
	}
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	val, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return val, nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func testOrder() Order {
	return Order{
		Items: []LineItem{
			{Name: "widget", Price: decimal.NewFromFloat(9.99), Quantity: 2},
		},
		TotalAmount: decimal.NewFromFloat(19.98),
		ShippingDetails: ShippingDetails{
			Name:         "Ada Lovelace",
			AddressLine1: "1 Analytical Way",
			City:         "London",
			Country:      "GB",
		},
	}
}

func TestKeyFormat(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	got := Key("cust-42", at)
	want := "order:cust-42:1700000000000"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	cache := newFakeCache()
	store := NewStore(cache, time.Hour)
	ctx := context.Background()

	key := Key("cust-1", time.Now())
	if err := store.Put(ctx, key, testOrder()); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if cache.lastTTL != time.Hour {
		t.Fatalf("expected ttl %v, got %v", time.Hour, cache.lastTTL)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected staged order")
	}
	if len(got.Items) != 1 || got.Items[0].Name != "widget" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if !got.TotalAmount.Equal(decimal.NewFromFloat(19.98)) {
		t.Fatalf("unexpected total: %s", got.TotalAmount)
	}
	if got.ShippingDetails.City != "London" {
		t.Fatalf("unexpected shipping details: %+v", got.ShippingDetails)
	}
}

func TestGetMissReturnsNil(t *testing.T) {
	store := NewStore(newFakeCache(), time.Hour)

	got, err := store.Get(context.Background(), Key("cust-1", time.Now()))
	if err != nil {
		t.Fatalf("expected nil error on miss, got %v", err)
	}
	if got != nil {
		t.Fatal("expected nil order on miss")
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	cache := newFakeCache()
	store := NewStore(cache, time.Hour)
	ctx := context.Background()

	key := Key("cust-1", time.Now())
	if err := store.Put(ctx, key, testOrder()); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	got, err := store.Get(ctx, key)
	if err != nil || got != nil {
		t.Fatalf("expected miss after delete, got %+v (%v)", got, err)
	}
}

func TestNewStoreDefaultsTTL(t *testing.T) {
	store := NewStore(newFakeCache(), 0)
	if store.TTL() != DefaultTTL {
		t.Fatalf("expected default ttl %v, got %v", DefaultTTL, store.TTL())
	}
}
