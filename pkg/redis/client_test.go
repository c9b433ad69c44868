package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orderstack/checkout-service/pkg/config"
)

type mockCmdable struct {
	values map[string]string

	setCalls   int
	setNXCalls int
	delCalls   int
	lastTTL    time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{values: map[string]string{}}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.setCalls++
	m.lastTTL = ttl
	m.values[key] = toString(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := m.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	m.setNXCalls++
	m.lastTTL = ttl
	cmd := redis.NewBoolCmd(ctx)
	if _, exists := m.values[key]; exists {
		cmd.SetVal(false)
		return cmd
	}
	m.values[key] = toString(value)
	cmd.SetVal(true)
	return cmd
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.delCalls++
	var removed int64
	for _, key := range keys {
		if _, ok := m.values[key]; ok {
			delete(m.values, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return ""
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.Set(ctx, "order:u1:1700000000000", `{"items":[]}`, time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if mock.lastTTL != time.Hour {
		t.Fatalf("expected ttl %v, got %v", time.Hour, mock.lastTTL)
	}

	val, err := client.Get(ctx, "order:u1:1700000000000")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if val != `{"items":[]}` {
		t.Fatalf("unexpected value: %q", val)
	}

	if err := client.Del(ctx, "order:u1:1700000000000"); err != nil {
		t.Fatalf("Del returned error: %v", err)
	}
	if _, err := client.Get(ctx, "order:u1:1700000000000"); !IsMiss(err) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestSetNXFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	key := client.IdempotencyKey("checkout", "abc123")

	ok, err := client.SetNX(ctx, key, "pending", time.Minute)
	if err != nil {
		t.Fatalf("SetNX returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected first SetNX to succeed")
	}

	ok, err = client.SetNX(ctx, key, "pending", time.Minute)
	if err != nil {
		t.Fatalf("SetNX returned error: %v", err)
	}
	if ok {
		t.Fatal("expected second SetNX to be rejected")
	}
}

func TestIdempotencyKey(t *testing.T) {
	client := &Client{store: newMockCmdable()}

	got := client.IdempotencyKey("checkout", "req-1")
	want := "checkout:idempotency:checkout:req-1"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestIsMiss(t *testing.T) {
	if !IsMiss(redis.Nil) {
		t.Fatal("expected redis.Nil to be reported as a miss")
	}
	if IsMiss(context.Canceled) {
		t.Fatal("did not expect context.Canceled to be a miss")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		Address:      "localhost:6379",
		DB:           2,
		PoolSize:     5,
		MinIdleConns: 1,
		DialTimeout:  time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("optionsFromConfig returned error: %v", err)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 || opts.PoolSize != 5 {
		t.Fatalf("config not applied: db=%d pool=%d", opts.DB, opts.PoolSize)
	}

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error for empty config")
	}
}
